package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equb_server/internal/dto/respond"
	"equb_server/pkg/errorx"
)

type fakePaymentService struct {
	webhookErr  error
	checkoutErr error
	gotRaw      string
	gotSig      string
	gotRound    int
	gotUser     string
}

func (f *fakePaymentService) Checkout(ctx context.Context, userId, groupId string, round int) (*respond.CheckoutRespond, error) {
	f.gotUser = userId
	f.gotRound = round
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &respond.CheckoutRespond{TxRef: "tx-1", Round: 1, CheckoutURL: "https://pay.test/tx-1"}, nil
}

func (f *fakePaymentService) HandleWebhook(ctx context.Context, raw []byte, signature string) error {
	f.gotRaw = string(raw)
	f.gotSig = signature
	return f.webhookErr
}

func newPaymentEngine(svc *fakePaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPaymentHandler(svc)
	r := gin.New()
	r.POST("/payments/webhook", h.Webhook)
	r.POST("/payments/initialize/:groupId", func(c *gin.Context) {
		c.Set("user_id", "U1")
		h.Initialize(c)
	})
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWebhookPassesRawBodyAndSignature(t *testing.T) {
	svc := &fakePaymentService{}
	r := newPaymentEngine(svc)
	payload := `{"tx_ref":"tx-1","status":"success","amount":"100.00"}`

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(payload))
	req.Header.Set("Chapa-Signature", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, svc.gotRaw)
	assert.Equal(t, "abc", svc.gotSig)
}

func TestWebhookFallbackSignatureHeader(t *testing.T) {
	svc := &fakePaymentService{}
	r := newPaymentEngine(svc)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{}`))
	req.Header.Set("x-chapa-signature", "def")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "def", svc.gotSig)
}

func TestWebhookStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown tx_ref is acknowledged", errorx.New(errorx.CodeNotFound, "缴款记录不存在"), http.StatusOK},
		{"bad signature", errorx.New(errorx.CodeUnauthorized, "回调签名校验失败"), http.StatusUnauthorized},
		{"bad payload", errorx.New(errorx.CodeInvalidParam, "回调报文格式错误"), http.StatusBadRequest},
		{"internal", errorx.ErrServerBusy, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newPaymentEngine(&fakePaymentService{webhookErr: tc.err})
			req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestInitializeParsesRound(t *testing.T) {
	svc := &fakePaymentService{}
	r := newPaymentEngine(svc)

	req := httptest.NewRequest(http.MethodPost, "/payments/initialize/G1?round=3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, svc.gotRound)
	assert.Equal(t, "U1", svc.gotUser)
	body := decodeBody(t, w)
	assert.EqualValues(t, errorx.CodeSuccess, body["code"])

	req = httptest.NewRequest(http.MethodPost, "/payments/initialize/G1?round=abc", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitializeGatewayError(t *testing.T) {
	svc := &fakePaymentService{checkoutErr: errorx.New(errorx.CodeGatewayError, "支付网关暂不可用")}
	r := newPaymentEngine(svc)

	req := httptest.NewRequest(http.MethodPost, "/payments/initialize/G1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, errorx.CodeGatewayError, body["code"])
	assert.Equal(t, 0, svc.gotRound)
}
