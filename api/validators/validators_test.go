package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

type slotRequest struct {
	Date string `json:"date" validate:"required,slotdate"`
	Time string `json:"time" validate:"required,slottime"`
}

func TestDecodeJSONBodyValidatesSlotFormats(t *testing.T) {
	cases := []struct {
		body string
		ok   bool
	}{
		{`{"date":"2026-03-02","time":"09:30"}`, true},
		{`{"date":"2026-3-2","time":"09:30"}`, false},
		{`{"date":"2026-03-02","time":"9:30"}`, false},
		{`{"date":"2026-03-02","time":"24:00"}`, false},
		{`{"date":"2026-03-02"}`, false},
		{`{"date":"2026-03-02","time":"09:30","extra":1}`, false},
	}
	for _, tc := range cases {
		body, ok := tc.body, tc.ok
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var dest slotRequest
		err := DecodeJSONBody(req, &dest)
		if ok {
			require.NoError(t, err, body)
			continue
		}
		require.Error(t, err, body)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), body)
	}
}

func TestPathUUID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	_, err := PathUUID(req, "id")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQueryUUIDAbsentIsNil(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?client_id=", nil)
	id, err := QueryUUID(req, "client_id")
	require.NoError(t, err)
	require.Nil(t, id)
}

func TestSanitizeStringCutsOnRunes(t *testing.T) {
	require.Equal(t, "Conceição", SanitizeString("  Conceição  ", 0))
	require.Equal(t, "Conceiç", SanitizeString("Conceição", 7))
	require.Equal(t, "linha 1\nlinha 2", SanitizeString("linha 1\x00\nlinha 2\x07", 100))
}

func TestQueryDateAndMonth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?date=2026-03-02&from=2026-3-2&month=2026-03", nil)

	date, err := QueryDate(req, "date")
	require.NoError(t, err)
	require.Equal(t, "2026-03-02", date)

	_, err = QueryDate(req, "from")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	month, err := QueryMonth(req, "month")
	require.NoError(t, err)
	require.Equal(t, "2026-03", month)

	empty, err := QueryDate(req, "to")
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = RequireQuery(req, "to", QueryDate)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQueryFlag(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?a=true&b=1&c=yes", nil)
	require.True(t, QueryFlag(req, "a"))
	require.True(t, QueryFlag(req, "b"))
	require.False(t, QueryFlag(req, "c"))
	require.False(t, QueryFlag(req, "missing"))
}
