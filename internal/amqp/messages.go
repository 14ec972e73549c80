package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// EventType doubles as the routing key on the topic exchange.
type EventType string

const (
	EventExpenseCreated EventType = "expense.created"
	EventExpenseUpdated EventType = "expense.updated"
	EventExpenseDeleted EventType = "expense.deleted"
	EventBudgetAlert    EventType = "budget.alert"
)

// bindingKeys are the patterns the worker queue listens on.
var bindingKeys = []string{"expense.*", "budget.*"}

// ExpensePayload is the wire form of an expense.
type ExpensePayload struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Amount        core.Money `json:"amount"`
	Category      string     `json:"category"`
	Date          core.Date  `json:"date"`
	PaymentMethod string     `json:"paymentMethod"`
	Description   string     `json:"description,omitempty"`
}

// AlertPayload describes a category at warning or exceeded level.
type AlertPayload struct {
	Period      string     `json:"period"`
	Category    string     `json:"category"`
	Spent       core.Money `json:"spent"`
	Limit       core.Money `json:"limit"`
	PercentUsed float64    `json:"percentUsed"`
	Level       string     `json:"level"`
}

// Event is the single message shape published on the exchange.
type Event struct {
	Type      EventType       `json:"type"`
	UserID    string          `json:"userId"`
	Expense   *ExpensePayload `json:"expense,omitempty"`
	Alert     *AlertPayload   `json:"alert,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewExpenseEvent wraps an expense mutation.
func NewExpenseEvent(t EventType, e core.Expense) Event {
	return Event{
		Type:   t,
		UserID: e.UserID,
		Expense: &ExpensePayload{
			ID:            e.ID,
			UserID:        e.UserID,
			Amount:        e.Amount,
			Category:      e.Category,
			Date:          e.Date,
			PaymentMethod: e.PaymentMethod,
			Description:   e.Description,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertEvent wraps a budget alert for userID.
func NewAlertEvent(userID string, a AlertPayload) Event {
	return Event{
		Type:      EventBudgetAlert,
		UserID:    userID,
		Alert:     &a,
		Timestamp: time.Now().UTC(),
	}
}

// ToExpense converts the payload back to the domain type.
func (p ExpensePayload) ToExpense() core.Expense {
	return core.Expense{
		ID:            p.ID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		Category:      p.Category,
		Date:          p.Date,
		PaymentMethod: p.PaymentMethod,
		Description:   p.Description,
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks an event body.
func EventFromJSON(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	switch ev.Type {
	case EventExpenseCreated, EventExpenseUpdated, EventExpenseDeleted:
		if ev.Expense == nil {
			return Event{}, fmt.Errorf("%s event without expense", ev.Type)
		}
	case EventBudgetAlert:
		if ev.Alert == nil {
			return Event{}, fmt.Errorf("%s event without alert", ev.Type)
		}
	default:
		return Event{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return ev, nil
}
