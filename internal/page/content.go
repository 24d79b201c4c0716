package page

// PolicyData backs the policy page; Kind is the value of the "type"
// query parameter, defaulting to privacy.
type PolicyData struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

var policies = map[string]PolicyData{
	"privacy": {
		Kind:  "privacy",
		Title: "Privacy Policy",
		Body: "We collect only the information needed to process your orders: " +
			"contact details, shipping addresses, and order history. Payment is " +
			"handled entirely by our commerce provider; card details never reach " +
			"our systems. We do not sell customer data.",
	},
	"terms": {
		Kind:  "terms",
		Title: "Terms of Service",
		Body: "Products listed are intended for professional and home medical " +
			"use as described. Prices and availability are confirmed at checkout " +
			"by our commerce provider. Equipment requiring a prescription is " +
			"dispatched only after verification.",
	},
	"returns": {
		Kind:  "returns",
		Title: "Returns & Refunds",
		Body: "Unopened equipment may be returned within 7 days of delivery. " +
			"Consumables and items opened from sterile packaging are not " +
			"returnable. Refunds are issued to the original payment method " +
			"within 5-7 business days of inspection.",
	},
}

func (reg *Registry) policy(view View, kind string) View {
	policy, ok := policies[kind]
	if !ok {
		policy = policies["privacy"]
	}
	view.Title = policy.Title
	view.Data = policy
	return view
}

const aboutContent = StoreName + " supplies hospitals, clinics, and home " +
	"care patients with respiratory equipment, patient monitoring, and " +
	"mobility aids. Every device ships with manufacturer warranty and our " +
	"own installation support."
