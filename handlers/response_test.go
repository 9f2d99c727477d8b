package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{utils.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: cashier cannot approve transactions", utils.ErrForbidden), http.StatusForbidden},
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{utils.ErrorRecordNotFound, http.StatusNotFound},
		{&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, http.StatusConflict},
		{utils.ErrDuplicate, http.StatusConflict},
		{utils.ErrMissingFields, http.StatusBadRequest},
		{utils.InvalidInput("bad amount"), http.StatusBadRequest},
		{fmt.Errorf("%w: paid -> rejected", utils.ErrInvalidTransition), http.StatusBadRequest},
		{utils.ErrInsufficientBalance, http.StatusBadRequest},
		{utils.ErrAlreadySerialized, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, errors.New("dial tcp 10.0.0.3:3306: i/o timeout"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Success || resp.Message != "internal server error" {
		t.Fatalf("response = %+v", resp)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("internal error not recorded for the logger")
	}
}

func TestRespondErrorShowsClientErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, utils.InvalidInput("amount must be greater than zero"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeResponse(t, w); !strings.Contains(resp.Message, "amount must be greater than zero") {
		t.Fatalf("message = %q", resp.Message)
	}
}

type bindTarget struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

func TestBindJSON(t *testing.T) {
	newContext := func(body string) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		return c, w
	}

	c, _ := newContext(`{"name":"Aye"}`)
	var ok bindTarget
	if !bindJSON(c, &ok) || ok.Name != "Aye" {
		t.Fatalf("valid body rejected: %+v", ok)
	}

	c, w := newContext(`{"email":"not-an-email"}`)
	var bad bindTarget
	if bindJSON(c, &bad) {
		t.Fatal("invalid body accepted")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeResponse(t, w)
	fields, _ := resp.Data.(map[string]interface{})
	if fields["name"] != "required" || fields["email"] != "email" {
		t.Fatalf("field errors = %v", resp.Data)
	}

	c, w = newContext(`{not json`)
	if bindJSON(c, &bad) || w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: status %d", w.Code)
	}
}

func TestParamId(t *testing.T) {
	for _, tc := range []struct {
		param string
		ok    bool
	}{{"12", true}, {"0", false}, {"-3", false}, {"abc", false}} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: tc.param}}
		id, ok := paramId(c)
		if ok != tc.ok {
			t.Errorf("paramId(%q) ok = %v", tc.param, ok)
		}
		if ok && id != 12 {
			t.Errorf("paramId(%q) = %d", tc.param, id)
		}
		if !ok && w.Code != http.StatusBadRequest {
			t.Errorf("paramId(%q) status = %d", tc.param, w.Code)
		}
	}
}

func TestQueryBool(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?isActive=false&junk=maybe", nil)
	if v := queryBool(c, "isActive"); v == nil || *v {
		t.Fatalf("isActive = %v", v)
	}
	if queryBool(c, "junk") != nil || queryBool(c, "missing") != nil {
		t.Fatal("unparseable or missing flag should be nil")
	}
}

func TestUnknownRoutesUseEnvelope(t *testing.T) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.GET("/api/counter", func(c *gin.Context) { respondOK(c, http.StatusOK, nil) })
	r.NoMethod(MethodNotAllowed)
	r.NoRoute(NotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/counter", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /api/counter = %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Success || resp.Message != "method not allowed" {
		t.Fatalf("response = %+v", resp)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /api/nope = %d", w.Code)
	}
}

func TestAttachmentDispositionQuotesFilename(t *testing.T) {
	cases := map[string]string{
		"PCPV-000001.xlsx":  `attachment; filename="PCPV-000001.xlsx"`,
		"CPV 000002.xlsx":   `attachment; filename="CPV 000002.xlsx"`,
		`odd"name;x=1.xlsx`: `attachment; filename="odd\"name;x=1.xlsx"`,
	}
	for in, want := range cases {
		if got := attachmentDisposition(in); got != want {
			t.Fatalf("attachmentDisposition(%q) = %s, want %s", in, got, want)
		}
	}
}
