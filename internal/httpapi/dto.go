package httpapi

import (
	"time"

	"fjacquet/expense-categorizer/internal/models"

	"github.com/shopspring/decimal"
)

// Request bodies accept amounts as JSON numbers or numeric strings; responses
// always carry plain JSON numbers.

type classifyRequest struct {
	UserID  string `json:"userId"`
	RawText string `json:"rawText"`
}

type classifyResponse struct {
	Amount     *float64 `json:"amount"`
	Category   string   `json:"category"`
	Confidence *float64 `json:"confidence"`
	Message    string   `json:"message"`
	Options    []string `json:"options,omitempty"`
	Source     string   `json:"source"`
	Term       string   `json:"term"`
}

func newClassifyResponse(r models.ClassificationResult) classifyResponse {
	resp := classifyResponse{
		Category:   r.Category,
		Confidence: r.Confidence,
		Message:    r.Message,
		Options:    r.Options,
		Source:     r.Source,
		Term:       r.Term,
	}
	if r.Amount != nil {
		f := r.Amount.InexactFloat64()
		resp.Amount = &f
	}
	return resp
}

type saveRequest struct {
	UserID   string           `json:"userId"`
	Amount   *decimal.Decimal `json:"amount"`
	Category string           `json:"category"`
	RawText  string           `json:"rawText"`
	Date     string           `json:"date"`
}

type saveResponse struct {
	OK        bool   `json:"ok"`
	ExpenseID string `json:"expenseId"`
}

type listRequest struct {
	UserID   string `json:"userId"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Category string `json:"category"`
}

type expenseDTO struct {
	ExpenseID string    `json:"expenseId"`
	UserID    string    `json:"userId"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	RawText   string    `json:"rawText"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

func newExpenseDTOs(items []models.Expense) []expenseDTO {
	out := make([]expenseDTO, 0, len(items))
	for _, e := range items {
		out = append(out, expenseDTO{
			ExpenseID: e.ID,
			UserID:    e.UserID,
			Amount:    e.Amount.InexactFloat64(),
			Category:  e.Category,
			RawText:   e.RawText,
			Date:      e.Date,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

type listResponse struct {
	Items []expenseDTO `json:"items"`
}

type editRequest struct {
	ExpenseID string `json:"expenseId"`
	Updates   struct {
		Amount   *decimal.Decimal `json:"amount"`
		Category *string          `json:"category"`
		RawText  *string          `json:"rawText"`
	} `json:"updates"`
}

func (r editRequest) update() models.ExpenseUpdate {
	return models.ExpenseUpdate{
		Amount:   r.Updates.Amount,
		Category: r.Updates.Category,
		RawText:  r.Updates.RawText,
	}
}

type deleteRequest struct {
	ExpenseID string `json:"expenseId"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type monthlyRequest struct {
	UserID string `json:"userId"`
	Month  string `json:"month"`
}

type monthlyResponse struct {
	Month  string             `json:"month"`
	Totals map[string]float64 `json:"totals"`
}

func newMonthlyResponse(s models.MonthlySummary) monthlyResponse {
	totals := make(map[string]float64, len(s.Totals))
	for category, total := range s.Totals {
		totals[category] = total.InexactFloat64()
	}
	return monthlyResponse{Month: s.Month, Totals: totals}
}

type categoryRequest struct {
	UserID   string `json:"userId"`
	Category string `json:"category"`
}

type categoryResponse struct {
	Items []expenseDTO `json:"items"`
	Total float64      `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}
