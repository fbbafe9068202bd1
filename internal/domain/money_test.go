package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Money
		wantErr bool
	}{
		{name: "whole", input: "10", want: 1000},
		{name: "one decimal", input: "10.5", want: 1050},
		{name: "two decimals", input: "10.50", want: 1050},
		{name: "cents only", input: ".05", want: 5},
		{name: "zero", input: "0", want: 0},
		{name: "surrounding spaces", input: "  7.25 ", want: 725},
		{name: "negative", input: "-3", want: -300},
		{name: "three decimals", input: "10.555", wantErr: true},
		{name: "trailing dot", input: "1.", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "minus only", input: "-", wantErr: true},
		{name: "letters", input: "ten", wantErr: true},
		{name: "signed fraction", input: "10.-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney_TimesIsExact(t *testing.T) {
	price, err := ParseMoney("10.00")
	require.NoError(t, err)

	total, err := price.Times(3)
	require.NoError(t, err)

	assert.Equal(t, Money(3000), total)
	assert.Equal(t, "30.00", total.String())
	assert.Equal(t, 30.0, total.Float64())
}

func TestMoney_TimesOverflow(t *testing.T) {
	_, err := Money(5_000_000_000_000_000_000).Times(2)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	_, err = MaxPrice.Times(1_000_000)
	assert.NoError(t, err)

	_, err = Money(100).Times(-1)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	zero, err := Money(math.MaxInt64).Times(0)
	require.NoError(t, err)
	assert.Zero(t, zero)
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "0.00", Money(0).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-0.05", Money(-5).String())
	assert.Equal(t, "1234.56", Money(123456).String())
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: 1999})
	require.NoError(t, err)

	assert.JSONEq(t, `{"price": 19.99}`, string(data))
}

func TestEvent_TicketsLeft(t *testing.T) {
	e := Event{TotalTickets: 5, TicketsSold: 3, Status: EventOpen}
	assert.Equal(t, 2, e.TicketsLeft())
	assert.True(t, e.IsOpen())

	e.TicketsSold = 5
	assert.Equal(t, 0, e.TicketsLeft())
	assert.False(t, e.IsOpen())

	e = Event{TotalTickets: 5, Status: EventSoldOut}
	assert.False(t, e.IsOpen())
}

func TestBooking_IsValid(t *testing.T) {
	assert.True(t, (&Booking{Quantity: 1, UserID: 1, EventID: 1}).IsValid())
	assert.False(t, (&Booking{Quantity: 0, UserID: 1, EventID: 1}).IsValid())
	assert.False(t, (&Booking{Quantity: -2, UserID: 1, EventID: 1}).IsValid())
	assert.False(t, (&Booking{Quantity: 1, EventID: 1}).IsValid())
}
