package handler

import "time"

// envelope is the response body of every endpoint.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// --- Request types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,max=100,email"`
	Password string `json:"password" validate:"required,password"`
}

type phoneRequest struct {
	Number      string `json:"number"      validate:"required,notblank"`
	CityCode    string `json:"citycode"    validate:"required,notblank"`
	CountryCode string `json:"countrycode" validate:"required,notblank"`
}

type registerRequest struct {
	Name     string         `json:"name"     validate:"required,notblank,max=100"`
	Email    string         `json:"email"    validate:"required,max=100,email"`
	Password string         `json:"password" validate:"required,password"`
	Phones   []phoneRequest `json:"phones"   validate:"required,dive"`
}

type phonePatchRequest struct {
	ID          *string `json:"id"          validate:"omitnil,uuid"`
	Number      *string `json:"number"      validate:"omitnil,notblank"`
	CityCode    *string `json:"citycode"    validate:"omitnil,notblank"`
	CountryCode *string `json:"countrycode" validate:"omitnil,notblank"`
}

type patchRequest struct {
	Name     *string             `json:"name"     validate:"omitnil,notblank,max=100"`
	Email    *string             `json:"email"    validate:"omitnil,notblank,max=100,email"`
	Password *string             `json:"password" validate:"omitnil,password"`
	Phones   []phonePatchRequest `json:"phones"   validate:"omitempty,dive"`
}

// --- Response types ---

type phoneResponse struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	CityCode    string `json:"citycode"`
	CountryCode string `json:"countrycode"`
}

type accountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Created   time.Time       `json:"created"`
	Modified  time.Time       `json:"modified"`
	LastLogin time.Time       `json:"last_login"`
	Token     string          `json:"token"`
	Active    bool            `json:"is_active"`
	Phones    []phoneResponse `json:"phones"`
}

type loginResponse struct {
	ID        string    `json:"id"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
	LastLogin time.Time `json:"last_login"`
	Token     string    `json:"token"`
	Active    bool      `json:"is_active"`
}
