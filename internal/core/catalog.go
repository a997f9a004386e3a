package core

// Fixed catalogs the presentation layer offers for categories and
// payment methods. Order is display-significant. Membership is not
// enforced when a record is submitted; the store accepts any non-empty
// value.

var categories = []string{
	"Salary", "Freelance/Contract", "Business Income", "Investment Income",
	"Dividends", "Interest", "Rental Income", "Side Hustle", "Tax Refund",
	"Gifts Received", "Other Income", "Housing/Rent", "Mortgage", "Property Tax",
	"Home Insurance", "Utilities", "Phone", "Internet", "Groceries", "Transportation",
	"Gas/Fuel", "Car Payment", "Auto Insurance", "Car Maintenance", "Healthcare",
	"Health Insurance", "Prescription Meds", "Childcare", "Home Repairs",
	"Home Improvement", "Lawn Care", "Pest Control", "House Cleaning",
	"Home Security", "Appliances", "Furniture", "Dining Out", "Coffee/Drinks",
	"Entertainment", "Streaming Services", "Gym/Fitness", "Beauty/Personal Care",
	"Clothing", "Shopping", "Hobbies", "Books/Education", "Gifts Given",
	"Charity/Donations", "Bank Fees", "Credit Card Fees", "Investment Fees",
	"Tax Preparation", "Professional Services", "Legal Fees", "Accounting",
	"Travel/Vacation", "Hotels", "Flights", "Travel Food", "Pet Food",
	"Veterinary", "Pet Supplies", "Pet Insurance", "Miscellaneous",
	"Cash Withdrawal", "Other",
}

var paymentMethods = []string{
	"Cash", "Check", "Debit Card", "Credit Card", "Bank Transfer",
	"Zelle", "Venmo", "PayPal", "Apple Pay", "Google Pay", "CashApp",
	"Wire Transfer", "ACH Transfer", "Direct Deposit", "Money Order", "Other",
}

// Categories returns the category catalog in display order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// PaymentMethods returns the payment-method catalog in display order.
func PaymentMethods() []string {
	out := make([]string, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}
