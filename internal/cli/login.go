// internal/cli/login.go
package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/court-tools/rankpull/internal/auth"
	"github.com/court-tools/rankpull/internal/render/dynamic"
	"github.com/court-tools/rankpull/internal/ui"
)

var (
	loginSession   string
	loginWaitFor   string
	loginTimeout   string
	loginDebugPort int
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <url>",
	Short: "Log in to a site in a visible browser and save the session",
	Long: `Opens a visible browser window for you to log in to a ranking or
tournament site. Once you are in, the cookies are extracted and stored
securely in your OS keyring (or an on-disk fallback in headless
environments).

The saved session then lets rankings, entries, and snapshot read
member-only pages without logging in again.`,
	Example: `  # Log in and confirm with Enter when done
  rankpull login https://rankings.example.org/login --session=county

  # Consider the login done once the account menu appears
  rankpull login https://rankings.example.org/login --session=county --wait-for="#account-menu"

  # Use the saved session
  rankpull rankings https://rankings.example.org/adult --session=county`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginSession, "session", "s", "", "Session name to save (required)")
	loginCmd.Flags().StringVarP(&loginWaitFor, "wait-for", "w", "", "CSS selector that marks a finished login (e.g., '#account-menu')")
	loginCmd.Flags().StringVar(&loginTimeout, "login-timeout", "5m", "Time to allow for the login")
	loginCmd.Flags().IntVar(&loginDebugPort, "remote-debug", 0, "Expose Chrome remote debugging on this port (e.g., 9222)")
	loginCmd.MarkFlagRequired("session")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	loginURL := args[0]

	timeout, err := time.ParseDuration(loginTimeout)
	if err != nil {
		return fmt.Errorf("invalid login timeout: %w", err)
	}

	chromePath := a.Config.ChromePath
	if chromePath == "" {
		chromePath = dynamic.FindChrome()
	}

	log.Info().
		Str("url", loginURL).
		Str("session", loginSession).
		Msg("Initiating login")

	fmt.Printf("\n%s\n", ui.Bold("🔐 Interactive Login"))
	fmt.Printf("%s\n\n", ui.ColorDim+"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"+ui.ColorReset)
	fmt.Printf("  %s %s\n", ui.ColorBold+"Session:"+ui.ColorReset, ui.ColorWhite+loginSession+ui.ColorReset)
	fmt.Printf("  %s %s\n", ui.ColorBold+"URL:"+ui.ColorReset, ui.ColorWhite+loginURL+ui.ColorReset)
	fmt.Printf("  %s %s\n", ui.ColorBold+"Browser:"+ui.ColorReset, ui.ColorWhite+dynamic.ChromeVersion(chromePath)+ui.ColorReset)
	if loginWaitFor != "" {
		fmt.Printf("  %s %s\n", ui.ColorBold+"Waiting:"+ui.ColorReset, ui.ColorWhite+loginWaitFor+ui.ColorReset)
	}
	fmt.Printf("  %s %s\n\n", ui.ColorBold+"Timeout:"+ui.ColorReset, ui.ColorWhite+timeout.String()+ui.ColorReset)

	session, err := auth.InteractiveLogin(auth.LoginOptions{
		SessionName:         loginSession,
		URL:                 loginURL,
		WaitSelector:        loginWaitFor,
		Timeout:             timeout,
		ChromePath:          chromePath,
		RemoteDebuggingPort: loginDebugPort,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	log.Info().Msg("Saving session")
	if err := auth.SaveSessionWithManifest(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Println(ui.Success("\n✓ Session saved successfully!"))
	fmt.Printf("\n%s\n", ui.Bold("You can now use this session with:"))
	fmt.Printf("  %s%s\n", ui.ColorCyan+"rankpull rankings <url> --session="+ui.ColorReset, ui.ColorWhite+loginSession+ui.ColorReset)
	fmt.Printf("  %s%s\n\n", ui.ColorCyan+"rankpull entries <url> --session="+ui.ColorReset, ui.ColorWhite+loginSession+ui.ColorReset)

	if !session.ExpiresAt.IsZero() {
		fmt.Printf("Session expires: %s\n\n", session.ExpiresAt.Format(time.RFC1123))
	}

	return nil
}
