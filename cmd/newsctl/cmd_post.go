package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/dto"
)

var (
	newsForm  domain.NewsForm
	newsImage string

	profileForm  domain.ProfileForm
	profileImage string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Print the post being written by the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runDraft,
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Submit the post of the signed-in user",
	Long: `Submits the post. --image uploads a local file; --image-url keeps an image
that is already online.

Example:
  newsctl post --category the-thao --release-date 2026-10-18 --title "..." \
    --short-title "..." --description "..." --tags "bong-da" --image ./cover.jpg`,
	Args: cobra.NoArgs,
	RunE: runPost,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the profile of the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

// openUpload opens the file at path as an upload. The returned func closes it.
func openUpload(path string) (*client.Upload, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upload := &client.Upload{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Body:        f,
	}
	return upload, func() { f.Close() }, nil
}

func runDraft(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	draft, err := portal.PostService.Draft(ctx)
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, draft)
}

func runPost(cmd *cobra.Command, args []string) error {
	image, done, err := openUpload(newsImage)
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	msg, err := portal.PostService.Submit(ctx, newsForm, image)
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, dto.MessageResponse{Message: msg})
}

func runProfile(cmd *cobra.Command, args []string) error {
	image, done, err := openUpload(profileImage)
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	msg, err := portal.ProfileService.Update(ctx, profileForm, image)
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, dto.MessageResponse{Message: msg})
}

func init() {
	f := postCmd.Flags()
	f.StringVar(&newsForm.Category, "category", "", "Category")
	f.StringVar(&newsForm.ReleaseDate, "release-date", "", "Release date")
	f.StringVar(&newsForm.Title, "title", "", "Title")
	f.StringVar(&newsForm.ShortTitle, "short-title", "", "Short title")
	f.StringVar(&newsForm.Description, "description", "", "Body")
	f.StringVar(&newsForm.Tags, "tags", "", "Comma separated tags")
	f.StringVar(&newsForm.Image, "image-url", "", "URL of an image already uploaded")
	f.StringVar(&newsImage, "image", "", "Image file to upload")

	f = profileCmd.Flags()
	f.StringVar(&profileForm.Email, "email", "", "Email")
	f.StringVar(&profileForm.ContactNo, "contact-no", "", "10 digit phone number")
	f.StringVar(&profileForm.FullName, "full-name", "", "Full name")
	f.StringVar(&profileForm.Sex, "sex", "", "male or female")
	f.StringVar(&profileForm.BirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	f.StringVar(&profileForm.AddressOne, "address", "", "Address")
	f.StringVar(&profileForm.ProfileImage, "image-url", "", "URL of a profile image already uploaded")
	f.StringVar(&profileImage, "image", "", "Profile image file to upload")
}
