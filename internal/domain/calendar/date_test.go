package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AcceptsApiLayouts(t *testing.T) {
	for _, raw := range []string{
		"2024-03-05",
		"2024-03-05T00:00:00",
		"2024-03-05T13:45:10.1234567",
		"2024-03-05T13:45:10Z",
		"2024-03-05T23:45:10+02:00",
	} {
		d, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "2024-03-05", d.String(), raw)
	}

	_, err := Parse("05/03/2024")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	type loan struct {
		ReturnedDate *Date `json:"returnedDate"`
		LoanDate     Date  `json:"loanDate"`
	}

	var l loan
	require.NoError(t, json.Unmarshal([]byte(`{"returnedDate":null,"loanDate":"2024-01-02T00:00:00"}`), &l))
	assert.Nil(t, l.ReturnedDate)
	assert.Equal(t, "2024-01-02", l.LoanDate.String())

	out, err := json.Marshal(loan{LoanDate: MustParse("2024-01-02")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"returnedDate":null,"loanDate":"2024-01-02"}`, string(out))

	var zero Date
	out, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestBefore(t *testing.T) {
	assert.True(t, MustParse("2024-01-01").Before(MustParse("2024-01-02")))
	assert.False(t, NewDate(time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)).Before(MustParse("2024-01-02")))
}
