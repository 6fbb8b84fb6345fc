package domain

// Records kept in the device-local cache and pushed upstream by the sync run.

type OwnerProfile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
}

type ShopAddress struct {
	HouseNumber string `json:"houseNumber"`
	Area        string `json:"area"`
	Landmark    string `json:"landmark"`
	PinCode     string `json:"pinCode"`
}

type Shop struct {
	ID          string      `json:"_id,omitempty"`
	OwnerID     string      `json:"ownerId"`
	ShopName    string      `json:"shopName"`
	ShopType    string      `json:"shopType"`
	ShopPhoto   string      `json:"shopPhoto"`
	Address     ShopAddress `json:"address"`
	GPSLocation string      `json:"gpsLocation"`
	OpeningTime string      `json:"openingTime"`
	ClosingTime string      `json:"closingTime"`
	WeeklyOff   string      `json:"weeklyOff"`
}

type Product struct {
	ID          string `json:"id"`
	RemoteID    string `json:"_id,omitempty"`
	ShopOwnerID string `json:"shopOwnerId"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Available   bool   `json:"available"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

type CustomerProfile struct {
	ID     string `json:"id"`
	Mobile string `json:"mobile"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// ProfileUpdate is the subset of a customer profile accepted by the remote
// profile endpoint.
type ProfileUpdate struct {
	UserID string `json:"userId"`
	Mobile string `json:"mobile"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// LocalCartEntry wraps a full product snapshot, unlike the flat CartItem the
// cart API stores.
type LocalCartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (e LocalCartEntry) CartItem() CartItem {
	return CartItem{
		ProductID:   e.Product.ID,
		Quantity:    e.Quantity,
		Name:        e.Product.Name,
		Price:       e.Product.Price,
		ShopOwnerID: e.Product.ShopOwnerID,
	}
}

func (c CustomerProfile) Update() ProfileUpdate {
	return ProfileUpdate{
		UserID: c.ID,
		Mobile: c.Mobile,
		Name:   c.Name,
		Email:  c.Email,
	}
}
