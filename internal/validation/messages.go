package validation

// fieldMessages are the form messages shown for a failing field, whatever
// rule failed. Fields without an entry fall back to the validator's
// translated message.
var fieldMessages = map[string]map[string]string{
	"vi": {
		"email":                 "Vui lòng nhập địa chỉ email hợp lệ.",
		"password":              "Mật khẩu phải có ít nhất 6 ký tự.",
		"password_confirmation": "Mật khẩu xác nhận không khớp.",
		"contact_no":            "Vui lòng nhập số điện thoại hợp lệ (10 chữ số).",
		"full_name":             "Họ và tên là bắt buộc.",
		"sex":                   "Vui lòng chọn giới tính của bạn.",
		"birth_date":            "Ngày sinh là bắt buộc.",
		"address_one":           "Địa chỉ là bắt buộc.",
		"profile_image":         "Ảnh đại diện là bắt buộc.",
		"category":              "Danh mục là bắt buộc.",
		"release_date":          "Ngày phát hành là bắt buộc.",
		"title":                 "Tiêu đề là bắt buộc.",
		"short_title":           "Tiêu đề ngắn là bắt buộc.",
		"description":           "Mô tả là bắt buộc.",
		"image":                 "Ảnh là bắt buộc.",
		"tags":                  "Thẻ bài viết là bắt buộc.",
	},
	"en": {
		"email":                 "Please enter a valid email address.",
		"password":              "Password must be at least 6 characters.",
		"password_confirmation": "Password confirmation does not match.",
		"contact_no":            "Please enter a valid phone number (10 digits).",
		"full_name":             "Full name is required.",
		"sex":                   "Please select your gender.",
		"birth_date":            "Birth date is required.",
		"address_one":           "Address is required.",
		"profile_image":         "Profile image is required.",
		"category":              "Category is required.",
		"release_date":          "Release date is required.",
		"title":                 "Title is required.",
		"short_title":           "Short title is required.",
		"description":           "Description is required.",
		"image":                 "Image is required.",
		"tags":                  "Tags are required.",
	},
}
