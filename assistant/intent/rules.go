package intent

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/shopmate-assistant/assistant/contract"
)

// rule maps a keyword set onto an intent. Rules are evaluated in
// order and the first match wins, so earlier rules shadow later ones.
type rule struct {
	intent   contractx.Intent
	keywords []string
}

var classifierRules = []rule{
	{contractx.IntentGreet, []string{"hello", "hi ", "hey"}},
	{contractx.IntentRequestReturn, []string{"return", "exchange", "refund"}},
	{contractx.IntentCheckout, []string{"checkout", "check out", "buy now", "place order"}},
	{contractx.IntentAddToCart, []string{"add to cart", "cart"}},
	{contractx.IntentViewOrders, []string{"my orders", "order history", "orders"}},
	{contractx.IntentProvideInfo, []string{"my name is", "my address", "payment method", "pay by", "pay with"}},
	{contractx.IntentSearchProduct, []string{"search", "find", "looking for", "price", "cost", "show me"}},
}

// RuleClassifier is the deterministic fallback intent source used when
// the language model is unavailable. It classifies intent only; entity
// extraction is left to the clarifying questions of the dialogue agent.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

func (c *RuleClassifier) Extract(_ context.Context, _, text string) (contractx.Extraction, error) {
	return Normalize(contractx.Extraction{Intent: Classify(text)}), nil
}

// Classify runs the ordered keyword rules against the message.
func Classify(text string) contractx.Intent {
	msg := " " + strings.ToLower(strings.TrimSpace(text)) + " "
	for _, r := range classifierRules {
		for _, kw := range r.keywords {
			if strings.Contains(msg, kw) {
				return r.intent
			}
		}
	}
	return contractx.IntentUnknown
}
