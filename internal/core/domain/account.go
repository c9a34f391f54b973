package domain

import "time"

// Phone is a contact number owned by exactly one Account.
// A Phone with an empty ID has not been persisted yet.
type Phone struct {
	ID          string `json:"id" bson:"_id"`
	AccountID   string `json:"-" bson:"account_id"`
	Number      string `json:"number" bson:"number"`
	CityCode    string `json:"citycode" bson:"citycode"`
	CountryCode string `json:"countrycode" bson:"countrycode"`
}

// Account is the aggregate root: a registered identity and its phones.
type Account struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Created      time.Time `json:"created" bson:"created"`
	Modified     time.Time `json:"modified" bson:"modified"`
	LastLogin    time.Time `json:"last_login" bson:"last_login"`
	Token        string    `json:"token,omitempty" bson:"token,omitempty"`
	Active       bool      `json:"is_active" bson:"is_active"`
	Phones       []Phone   `json:"phones" bson:"-"`
}

// AddPhone appends a new, unsaved phone owned by the account.
func (a *Account) AddPhone(number, cityCode, countryCode string) {
	a.Phones = append(a.Phones, Phone{
		AccountID:   a.ID,
		Number:      number,
		CityCode:    cityCode,
		CountryCode: countryCode,
	})
}

// PhoneByID returns a pointer into the account's phone list so callers can
// modify the phone in place.
func (a *Account) PhoneByID(id string) (*Phone, bool) {
	for i := range a.Phones {
		if a.Phones[i].ID == id {
			return &a.Phones[i], true
		}
	}
	return nil, false
}

// AssignIDs fills the account id (if empty) and the id of every phone that
// has not been persisted yet, and points each phone at its owner.
// It returns the number of phones that received a new id.
func (a *Account) AssignIDs(newID func() string) int {
	if a.ID == "" {
		a.ID = newID()
	}
	assigned := 0
	for i := range a.Phones {
		a.Phones[i].AccountID = a.ID
		if a.Phones[i].ID == "" {
			a.Phones[i].ID = newID()
			assigned++
		}
	}
	return assigned
}

// Clone returns a deep copy; the phone slice is not shared.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.Phones != nil {
		c.Phones = make([]Phone, len(a.Phones))
		copy(c.Phones, a.Phones)
	}
	return &c
}

// Identity is what the directory knows about an email: enough to decide
// whether a token presented for it should be honoured.
type Identity struct {
	Email             string `json:"email"`
	CredentialVersion string `json:"credential_version"`
	Active            bool   `json:"active"`
}
