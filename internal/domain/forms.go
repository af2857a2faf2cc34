package domain

// LoginRequest is the login form
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the signup form
type RegisterForm struct {
	Email                string `json:"email" validate:"required,email"`
	FullName             string `json:"full_name" validate:"required"`
	ContactNo            string `json:"contact_no" validate:"required,numeric,len=10"`
	BirthDate            string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	AddressOne           string `json:"address_one" validate:"required"`
	Sex                  string `json:"sex" validate:"required,oneof=Male Female"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// ForgotPasswordRequest is the forgot-password form
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewsForm is the add/update post form. Image holds the existing image URL or
// the name of the file being uploaded.
type NewsForm struct {
	Category    string `json:"category" form:"category" validate:"required"`
	ReleaseDate string `json:"release_date" form:"release_date" validate:"required"`
	Title       string `json:"title" form:"title" validate:"required"`
	ShortTitle  string `json:"short_title" form:"short_title" validate:"required"`
	Description string `json:"description" form:"description" validate:"required"`
	Image       string `json:"image" form:"image" validate:"required"`
	Tags        string `json:"tags" form:"tags" validate:"required"`
}

// ProfileForm is the edit profile form. ProfileImage holds the existing image
// URL or the name of the file being uploaded.
type ProfileForm struct {
	Email        string `json:"email" form:"email" validate:"required,email"`
	ContactNo    string `json:"contact_no" form:"contact_no" validate:"required,numeric,len=10"`
	FullName     string `json:"full_name" form:"full_name" validate:"required"`
	Sex          string `json:"sex" form:"sex" validate:"required,oneof=male female Male Female"`
	BirthDate    string `json:"birth_date" form:"birth_date" validate:"required,datetime=2006-01-02"`
	AddressOne   string `json:"address_one" form:"address_one" validate:"required"`
	ProfileImage string `json:"profile_image" form:"profile_image" validate:"required"`
}
