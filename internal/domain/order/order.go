package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("order: not found")
	ErrConflict = errors.New("order: already recorded")
)

type Status string

const (
	StatusFulfilled          Status = "fulfilled"
	StatusPartiallyFulfilled Status = "partially_fulfilled"
)

type Line struct {
	Description string
	ProductID   int64
	Quantity    int64
	Matched     bool
}

// Order records a completed checkout session once its stock has been reconciled.
type Order struct {
	ID                string
	CheckoutSessionID string
	EventID           string
	CustomerEmail     string
	Status            Status
	Lines             []Line
	CreatedAt         time.Time
}

func New(id, sessionID, eventID, email string, lines []Line) *Order {
	o := &Order{
		ID:                id,
		CheckoutSessionID: sessionID,
		EventID:           eventID,
		CustomerEmail:     email,
		Lines:             lines,
		CreatedAt:         time.Now().UTC(),
	}
	o.Settle()
	return o
}

// Settle derives the status from the lines: any unmatched line makes the order partial.
func (o *Order) Settle() {
	o.Status = StatusFulfilled
	for _, l := range o.Lines {
		if !l.Matched {
			o.Status = StatusPartiallyFulfilled
			return
		}
	}
}

// MarkUnfulfilled flags line i as not reconciled against stock and re-derives the status.
func (o *Order) MarkUnfulfilled(i int) {
	if i < 0 || i >= len(o.Lines) {
		return
	}
	o.Lines[i].Matched = false
	o.Settle()
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = append([]Line(nil), o.Lines...)
	return &c
}
