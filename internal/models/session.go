package models

// Stage names the next question the conversation expects an answer to, or a
// terminal confirmation stage.
type Stage string

const (
	StageAskName         Stage = "ask_name"
	StageAskBundles      Stage = "ask_bundles"
	StageAskAddress      Stage = "ask_address"
	StageAskPostcode     Stage = "ask_postcode"
	StageAskDeliverySlot Stage = "ask_delivery_slot"
	StageConfirmOrder    Stage = "confirm_order"
	StageModifyOrder     Stage = "modify_order"
)

// Session is the in-progress conversation for one phone number. Fields are
// only ever populated for stages the user has already answered; Stage names
// the next unanswered question.
type Session struct {
	Stage        Stage  `json:"stage"`
	Name         string `json:"name,omitempty"`
	Bundles      int    `json:"bundles,omitempty"`
	Address      string `json:"address,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	DeliverySlot string `json:"delivery_slot,omitempty"`
	OrderID      string `json:"order_id,omitempty"`
}

// NewSession starts a fresh conversation at the first question.
func NewSession() *Session {
	return &Session{Stage: StageAskName}
}
