package intent

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/shopmate-assistant/assistant/contract"
)

func TestDecodeLLMOutputPlain(t *testing.T) {
	t.Parallel()

	out, err := decodeLLMOutput(`{"intent":"add_to_cart","entities":{"product_name":"iPhone 15","quantity":2}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Intent != "add_to_cart" {
		t.Fatalf("unexpected intent: %s", out.Intent)
	}
	if out.Entities.ProductName != "iPhone 15" || out.Entities.Quantity != 2 {
		t.Fatalf("unexpected entities: %+v", out.Entities)
	}
}

func TestDecodeLLMOutputCodeFence(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"intent\":\"greet\",\"entities\":{}}\n```"
	out, err := decodeLLMOutput(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Intent != "greet" {
		t.Fatalf("unexpected intent: %s", out.Intent)
	}
}

func TestDecodeLLMOutputQuotedNumbers(t *testing.T) {
	t.Parallel()

	out, err := decodeLLMOutput(`{"intent":"request_return","entities":{"order_id":"12","reason":"damaged"}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Entities.OrderID != 12 {
		t.Fatalf("order_id should accept a quoted number, got %d", out.Entities.OrderID)
	}
}

func TestDecodeLLMOutputMalformed(t *testing.T) {
	t.Parallel()

	if _, err := decodeLLMOutput("sure! here is the intent you asked for"); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected schema violation, got %v", err)
	}
	if _, err := decodeLLMOutput(`{"entities":{}}`); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected schema violation for missing intent, got %v", err)
	}
}

func TestNormalizeQuantityDefault(t *testing.T) {
	t.Parallel()

	ex := Normalize(contractx.Extraction{Intent: contractx.IntentCheckout})
	if ex.Entities.Quantity != 1 {
		t.Fatalf("checkout quantity must default to 1, got %d", ex.Entities.Quantity)
	}

	ex = Normalize(contractx.Extraction{Intent: contractx.IntentGreet})
	if ex.Entities.Quantity != 0 {
		t.Fatalf("greet must not gain a quantity, got %d", ex.Entities.Quantity)
	}
}

type stubSource struct {
	ex    contractx.Extraction
	err   error
	calls int
}

func (s *stubSource) Extract(ctx context.Context, sessionID, text string) (contractx.Extraction, error) {
	s.calls++
	if s.err != nil {
		return contractx.Extraction{}, s.err
	}
	return s.ex, nil
}

func TestFallbackSourcePrimaryWins(t *testing.T) {
	t.Parallel()

	primary := &stubSource{ex: contractx.Extraction{Intent: contractx.IntentCheckout}}
	secondary := &stubSource{ex: contractx.Extraction{Intent: contractx.IntentGreet}}

	src := NewFallbackSource(primary, secondary)
	ex, err := src.Extract(context.Background(), "s1", "checkout")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Intent != contractx.IntentCheckout {
		t.Fatalf("unexpected intent: %s", ex.Intent)
	}
	if secondary.calls != 0 {
		t.Fatal("secondary must not be consulted when primary succeeds")
	}
}

func TestFallbackSourceDegrades(t *testing.T) {
	t.Parallel()

	primary := &stubSource{err: contractx.ErrModelInvoke}
	secondary := &stubSource{ex: contractx.Extraction{Intent: contractx.IntentGreet}}

	src := NewFallbackSource(primary, secondary)
	ex, err := src.Extract(context.Background(), "s1", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Intent != contractx.IntentGreet {
		t.Fatalf("expected the fallback intent, got %s", ex.Intent)
	}
}

func TestFallbackSourceBothFail(t *testing.T) {
	t.Parallel()

	src := NewFallbackSource(&stubSource{err: contractx.ErrModelInvoke}, &stubSource{err: errors.New("also down")})
	ex, err := src.Extract(context.Background(), "s1", "hello")
	if err != nil {
		t.Fatalf("combined source must never error, got %v", err)
	}
	if ex.Intent != contractx.IntentUnknown {
		t.Fatalf("expected unknown, got %s", ex.Intent)
	}
}
