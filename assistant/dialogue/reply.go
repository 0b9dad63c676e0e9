package dialogue

// Fixed reply strings. Everything parameterized lives next to its
// branch in agent.go.
const (
	replyGreeting         = "Hello! How can I assist with your shopping today?"
	replyRephrase         = "I'm not sure I understood that. Could you rephrase it?"
	replyAskProductName   = "Which product would you like? Please give me a product name."
	replyNeedProfile      = "I need your details first. Please tell me your name, address, and payment method."
	replyNoOrders         = "You have no orders yet."
	replyAskOrderID       = "Which order would you like to return? Please give me the order number."
	replyAskReturnReason  = "Could you tell me the reason for the return?"
	replyProfileExists    = "You already have a profile with us."
	replyProfileUpdated   = "Your profile has been updated."
	replyProfileGone      = "I couldn't find your profile to update. Please share your name, address, and payment method again."
	replyAskProfileUpdate = "What would you like to change? You can update your name, address, or payment method."
	replyStoreTrouble     = "Sorry, something went wrong on our side. Please try that again."
)
