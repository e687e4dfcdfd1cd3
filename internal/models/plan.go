package models

// Plan is a purchasable credit package. The catalog is compiled in; prices
// are dollars and get converted to the provider's minor unit at checkout.
type Plan struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
	Credits int64  `json:"credits"`
}

var Plans = []Plan{
	{ID: 1, Name: "Free", Price: 0, Credits: 20},
	{ID: 2, Name: "Pro Package", Price: 10, Credits: 150},
	{ID: 3, Name: "Premium Package", Price: 40, Credits: 2000},
}

// PlanByID returns the catalog entry for id, or nil.
func PlanByID(id int) *Plan {
	for i := range Plans {
		if Plans[i].ID == id {
			return &Plans[i]
		}
	}
	return nil
}
