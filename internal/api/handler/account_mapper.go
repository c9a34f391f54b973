package handler

import "github.com/99minutos/account-service/internal/core/ports"

func toRegisterInput(req registerRequest) ports.RegisterInput {
	phones := make([]ports.PhoneInput, len(req.Phones))
	for i, p := range req.Phones {
		phones[i] = ports.PhoneInput{
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		}
	}
	return ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phones:   phones,
	}
}

func toPatchInput(req patchRequest) ports.PatchInput {
	var phones []ports.PhonePatch
	for _, p := range req.Phones {
		phones = append(phones, ports.PhonePatch{
			ID:          p.ID,
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		})
	}
	return ports.PatchInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phones:   phones,
	}
}

func toAccountResponse(v *ports.AccountView) accountResponse {
	phones := make([]phoneResponse, len(v.Phones))
	for i, p := range v.Phones {
		phones[i] = phoneResponse{
			ID:          p.ID,
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		}
	}
	return accountResponse{
		ID:        v.ID,
		Name:      v.Name,
		Email:     v.Email,
		Created:   v.Created,
		Modified:  v.Modified,
		LastLogin: v.LastLogin,
		Token:     v.Token,
		Active:    v.Active,
		Phones:    phones,
	}
}

func toAccountResponses(views []ports.AccountView) []accountResponse {
	out := make([]accountResponse, len(views))
	for i := range views {
		out[i] = toAccountResponse(&views[i])
	}
	return out
}

func toLoginResponse(r *ports.LoginResult) loginResponse {
	return loginResponse{
		ID:        r.ID,
		Created:   r.Created,
		Modified:  r.Modified,
		LastLogin: r.LastLogin,
		Token:     r.Token,
		Active:    r.Active,
	}
}
