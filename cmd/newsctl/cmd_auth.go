package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/dto"
)

var (
	loginEmail    string
	loginPassword string

	registerForm domain.RegisterForm
)

// loginCmd signs in and stores the session
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the platform",
	Long: `Signs in with email and password and stores the returned token.

The password may also be given in the NEWSCTL_PASSWORD environment variable.

Example:
  newsctl login --email an@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// statusCmd asks the platform whether the stored token is still valid
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the stored session is still valid",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Creates an account on the platform. Every flag is required.

Example:
  newsctl register --email an@example.com --full-name "Nguyễn Văn An" \
    --contact-no 0901234567 --birth-date 1990-05-01 --address "Hà Nội" \
    --sex Male --password secret1 --password-confirmation secret1`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password [email]",
	Short: "Request a password reset email",
	Long: `Asks the platform to send a password reset email.

A new request for the same email is refused for 60 seconds.`,
	Args: cobra.ExactArgs(1),
	RunE: runForgotPassword,
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	password := loginPassword
	if password == "" {
		password = os.Getenv("NEWSCTL_PASSWORD")
	}

	session, err := portal.AuthService.Login(ctx, domain.LoginRequest{Email: loginEmail, Password: password})
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, dto.LoginResponse{UserID: session.UserID, Authenticated: true})
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := portal.AuthService.Logout(ctx); err != nil {
		return describeError(err)
	}
	return printResult(cmd, dto.AuthStatusResponse{Authenticated: false})
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ok, err := portal.AuthService.CheckStatus(ctx)
	if err != nil {
		return describeError(err)
	}
	resp := dto.AuthStatusResponse{Authenticated: ok}
	if ok {
		session, err := portal.AuthService.CurrentSession(ctx)
		if err != nil {
			return describeError(err)
		}
		resp.UserID = session.UserID
		if session.ExpiresAt != nil {
			resp.ExpiresAt = session.ExpiresAt.UTC().Format(time.RFC3339)
		}
	}
	return printResult(cmd, resp)
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	msg, err := portal.AuthService.Register(ctx, registerForm)
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, dto.MessageResponse{Message: msg})
}

func runForgotPassword(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	msg, err := portal.AuthService.ForgotPassword(ctx, args[0])
	if err != nil {
		return describeError(err)
	}
	return printResult(cmd, dto.MessageResponse{Message: msg})
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCmd.MarkFlagRequired("email")

	f := registerCmd.Flags()
	f.StringVar(&registerForm.Email, "email", "", "Account email")
	f.StringVar(&registerForm.FullName, "full-name", "", "Full name")
	f.StringVar(&registerForm.ContactNo, "contact-no", "", "10 digit phone number")
	f.StringVar(&registerForm.BirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	f.StringVar(&registerForm.AddressOne, "address", "", "Address")
	f.StringVar(&registerForm.Sex, "sex", "", "Male or Female")
	f.StringVar(&registerForm.Password, "password", "", "Password, at least 6 characters")
	f.StringVar(&registerForm.PasswordConfirmation, "password-confirmation", "", "Password again")
}
