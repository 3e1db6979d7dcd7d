package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/commandes/pkg/response"
)

func TestServerErrorAlwaysCarriesDetail(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	rec := httptest.NewRecorder()
	response.ServerError(rec, "Erreur serveur", "dial tcp: connection refused")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Erreur serveur", env.Message)
	assert.Equal(t, "dial tcp: connection refused", env.Error)
}

func TestPaginatedEchoesWindow(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Paginated(rec, []int{1, 2}, response.Pagination{Page: 2, Limit: 10, Total: 2})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[1,2],"pagination":{"page":2,"limit":10,"total":2}}`, rec.Body.String())
}
