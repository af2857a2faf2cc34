package client

import (
	"context"
	"net/http"
	"net/url"

	"hoainiem-portal/internal/domain"
)

// ProfileClient calls POST /profile/update/{userId}
type ProfileClient interface {
	Update(ctx context.Context, token, userID string, form domain.ProfileForm, image *Upload) (string, error)
}

type profileClient struct {
	api *APIClient
}

// NewProfileClient creates a ProfileClient
func NewProfileClient(api *APIClient) ProfileClient {
	return &profileClient{api: api}
}

func (c *profileClient) Update(ctx context.Context, token, userID string, form domain.ProfileForm, image *Upload) (string, error) {
	fields := map[string]string{
		"email":       form.Email,
		"contact_no":  form.ContactNo,
		"full_name":   form.FullName,
		"sex":         form.Sex,
		"birth_date":  form.BirthDate,
		"address_one": form.AddressOne,
	}
	if image == nil && form.ProfileImage != "" {
		fields["profile_image_url"] = form.ProfileImage
	}

	var out struct {
		Message string `json:"message"`
	}
	req := Request{
		Method: http.MethodPost,
		Path:   "/profile/update/" + url.PathEscape(userID),
		Form:   &MultipartForm{Fields: fields, FileField: "profile_image", File: image},
		Token:  token,
	}
	if err := c.api.Do(ctx, req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
