package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/checkmate/internal/config"
)

// --- auth ---

type authResult struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

func credentialsFromFlags(cmd *cobra.Command) (map[string]string, error) {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	if username == "" || password == "" {
		return nil, fmt.Errorf("both --username and --password are required")
	}
	return map[string]string{"username": username, "password": password}, nil
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and print its API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentialsFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/auth/register", creds)
		if err != nil {
			return err
		}

		var auth authResult
		if err := decodeJSON(resp, &auth); err != nil {
			return err
		}

		printSuccess("Registered %s", auth.Username)
		fmt.Println(auth.Token)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print an API token",
	Long: `Log in and print an API token.

The token goes to stdout so it can be captured:
  export CHECKMATE_TOKEN=$(checkmate login --username alice --password secret)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentialsFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/auth/login", creds)
		if err != nil {
			return err
		}

		var auth authResult
		if err := decodeJSON(resp, &auth); err != nil {
			return err
		}

		printSuccess("Logged in as %s", auth.Username)
		fmt.Println(auth.Token)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().String("username", "", "account username")
		c.Flags().String("password", "", "account password")
	}
}

// --- chat ---

type chatResult struct {
	SessionID    string `json:"session_id"`
	HasSchedule  bool   `json:"has_schedule"`
	Type         string `json:"type"`
	ScheduleData struct {
		Events []struct {
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
			Title     string `json:"title"`
		} `json:"events"`
	} `json:"schedule_data"`
	Reply string `json:"reply"`
}

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message through the schedule pipeline",
	Long: `Send a message through the schedule pipeline.

Pass --session to continue an earlier conversation; the session ID is
printed with every response.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		sessionID, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/chat", map[string]string{
			"session_id": sessionID,
			"message":    message,
		})
		if err != nil {
			return err
		}

		var result chatResult
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if result.HasSchedule {
			fmt.Println(colorize(colorBold, "Found schedule:"))
			for _, ev := range result.ScheduleData.Events {
				fmt.Printf("  %s  %s\n", colorize(colorCyan, ev.StartDate), ev.Title)
			}
		}
		if result.Reply != "" {
			fmt.Println(result.Reply)
		}
		printStatus("Session", "%s", result.SessionID)
		return nil
	},
}

func init() {
	chatCmd.Flags().String("session", "", "session ID from a previous chat response")
}

// --- events ---

type eventLine struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	StartTime string `json:"start_time"`
	EndDate   string `json:"end_date"`
	Color     string `json:"color"`
}

func formatEvent(ev eventLine) string {
	when := ev.StartDate
	if ev.StartTime != "" {
		when += " " + ev.StartTime
	}
	return fmt.Sprintf("%s  %s", when, ev.Title)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List upcoming events across your calendars",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		q := url.Values{}
		if from != "" {
			q.Set("from", from)
		}
		if to != "" {
			q.Set("to", to)
		}
		path := "/events"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}

		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var events []eventLine
		if err := decodeJSON(resp, &events); err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No upcoming events.")
			return nil
		}
		for _, ev := range events {
			fmt.Println(formatEvent(ev))
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().String("from", "", "start of the window (YYYY-MM-DD, default today)")
	eventsCmd.Flags().String("to", "", "end of the window (YYYY-MM-DD, default a week out)")
}

// --- advisor ---

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Get a friendly remark about your upcoming schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/advisor/comment?days=%d", days))
		if err != nil {
			return err
		}

		var result struct {
			Comment string `json:"comment"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result.Comment)
		return nil
	},
}

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show today's weather advisory",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/advisor/weather")
		if err != nil {
			return err
		}

		var advice struct {
			Title   string `json:"title"`
			Summary string `json:"summary"`
			Advice  string `json:"advice"`
		}
		if err := decodeJSON(resp, &advice); err != nil {
			return err
		}

		fmt.Println(colorize(colorBold, advice.Title))
		fmt.Println(advice.Summary)
		if advice.Advice != "" {
			fmt.Println(advice.Advice)
		}
		return nil
	},
}

func init() {
	commentCmd.Flags().Int("days", 7, "how many days ahead to look")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
