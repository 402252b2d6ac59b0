package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/viteviteapp/apimodel"
	"github.com/jrsteele09/viteviteapp/internal/config"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/spf13/cobra"
)

// rootCmd builds the command tree. Each command wires its own app so --help
// works without a reachable credential store.
func rootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var showMetrics bool
	withApp := func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(config.New(), out, errOut)
			if err != nil {
				return err
			}
			defer func() {
				if showMetrics {
					err = errors.Join(err, a.dumpMetrics())
				}
				err = errors.Join(err, a.Close())
			}()
			return run(cmd, a, args)
		}
	}

	root := &cobra.Command{
		Use:           "vitevite",
		Short:         "Take and follow virtual queue tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print request counters after the command")

	root.AddCommand(
		loginCmd(in, withApp),
		registerCmd(in, withApp),
		logoutCmd(withApp),
		whoamiCmd(withApp),
		servicesCmd(withApp),
		ticketCmd(withApp),
		adminCmd(withApp),
	)
	return root
}

type appRunner func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error

func loginCmd(in io.Reader, withApp appRunner) *cobra.Command {
	var (
		email, password string
		remember        bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the platform",
		Long: `Sign in with email and password.

Without --remember the session lasts for this terminal only.

Examples:
  vitevite login --email ana@example.com
  vitevite login --email ana@example.com --remember`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if password == "" {
				var err error
				if password, err = prompt(in, a.out, "Password: "); err != nil {
					return err
				}
			}
			identity, err := a.sessions.Login(cmd.Context(), email, password, remember)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", identity.DisplayName(), identity.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password, prompted when empty")
	cmd.Flags().BoolVar(&remember, "remember", false, "stay signed in across terminals and restarts")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func registerCmd(in io.Reader, withApp appRunner) *cobra.Command {
	var (
		req      apimodel.RegisterRequest
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if req.Password == "" {
				var err error
				if req.Password, err = prompt(in, a.out, "Password: "); err != nil {
					return err
				}
			}
			identity, err := a.sessions.Register(cmd.Context(), req, remember)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			fmt.Fprintf(a.out, "Welcome %s, you are signed in\n", identity.DisplayName())
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password, prompted when empty")
	cmd.Flags().StringVar(&req.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number for queue notifications")
	cmd.Flags().StringVar(&req.Role, "role", "", "account role, user by default")
	cmd.Flags().BoolVar(&remember, "remember", false, "stay signed in across terminals and restarts")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget stored credentials",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		}),
	}
}

func whoamiCmd(withApp appRunner) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			identity, ok := a.sessions.Current(cmd.Context())
			if !ok {
				fmt.Fprintln(a.out, "Not signed in. Use 'vitevite login' to authenticate.")
				return nil
			}
			tier := a.store.ActiveTier(cmd.Context())
			fmt.Fprintf(a.out, "Email:   %s\nName:    %s\nRole:    %s\nStorage: %s\n", identity.Email, identity.FullName, identity.Role, tier.Name())
			if tokens, ok := a.store.Tokens(cmd.Context()); ok {
				if exp := tokens.Expiry(); !exp.IsZero() {
					fmt.Fprintf(a.out, "Expires: %s\n", exp.Local().Format(time.RFC1123))
				}
			}
			if !remote {
				return nil
			}
			me, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Backend: %s (%s)\n", me.Email, me.Role)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "also ask the backend who it thinks you are")
	return cmd
}

func servicesCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List services you can queue for",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := requireLogin(cmd, a); err != nil {
				return err
			}
			services, err := a.client.ListServices(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tOPEN\tQUEUE\tAVG MIN")
			for _, s := range services {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%d\n", s.ID, s.Name, s.Category, s.Open, s.QueueLength, s.AvgMinutes)
			}
			return w.Flush()
		}),
	}
}

func ticketCmd(withApp appRunner) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Take, follow and cancel tickets",
	}

	take := &cobra.Command{
		Use:   "take <service-id>",
		Short: "Join a service queue",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := requireLogin(cmd, a); err != nil {
				return err
			}
			ticket, err := a.client.TakeTicket(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTicket(a.out, ticket)
			return nil
		}),
	}

	show := &cobra.Command{
		Use:   "show <ticket-id>",
		Short: "Show a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := requireLogin(cmd, a); err != nil {
				return err
			}
			ticket, err := a.client.GetTicket(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTicket(a.out, ticket)
			return nil
		}),
	}

	watch := &cobra.Command{
		Use:   "watch <ticket-id>",
		Short: "Follow a ticket until it is served or cancelled",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := requireLogin(cmd, a); err != nil {
				return err
			}
			every := interval
			if every <= 0 {
				every = a.cfg.GetPollInterval()
			}
			for update := range a.client.WatchTicket(cmd.Context(), args[0], every) {
				if update.Err != nil {
					return update.Err
				}
				t := update.Ticket
				fmt.Fprintf(a.out, "%s  #%d %s position %d, about %d min\n",
					time.Now().Format(time.Kitchen), t.Number, t.Status, t.Position, t.EstimatedWaitMinutes)
			}
			return nil
		}),
	}
	watch.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from VITEVITE_POLL_INTERVAL)")

	cancel := &cobra.Command{
		Use:   "cancel <ticket-id>",
		Short: "Leave the queue",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := requireLogin(cmd, a); err != nil {
				return err
			}
			ticket, err := a.client.CancelTicket(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTicket(a.out, ticket)
			return nil
		}),
	}

	mine := &cobra.Command{
		Use:   "mine",
		Short: "List your tickets",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := requireLogin(cmd, a); err != nil {
				return err
			}
			tickets, err := a.client.MyTickets(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSERVICE\tNUMBER\tSTATUS\tPOSITION")
			for _, t := range tickets {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\n", t.ID, t.ServiceName, t.Number, t.Status, t.Position)
			}
			return w.Flush()
		}),
	}

	cmd.AddCommand(take, show, watch, cancel, mine)
	return cmd
}

func adminCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage users and services (admin accounts only)",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			list, err := a.client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMAIL\tNAME\tROLE")
			for _, u := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", u.Email, u.FullName, u.Role)
			}
			return w.Flush()
		}),
	}

	var service apimodel.Service
	create := &cobra.Command{
		Use:   "create-service",
		Short: "Add a service",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			created, err := a.client.CreateService(cmd.Context(), service)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %s (%s)\n", created.Name, created.ID)
			return nil
		}),
	}
	create.Flags().StringVar(&service.Name, "name", "", "service name")
	create.Flags().StringVar(&service.Description, "description", "", "description")
	create.Flags().StringVar(&service.Category, "category", "", "category, e.g. health")
	create.Flags().StringVar(&service.Location, "location", "", "where the counter is")
	create.Flags().IntVar(&service.AvgMinutes, "avg-minutes", 5, "average handling time per ticket")
	create.Flags().BoolVar(&service.Open, "open", true, "accept tickets immediately")
	_ = create.MarkFlagRequired("name")

	remove := &cobra.Command{
		Use:   "delete-service <service-id>",
		Short: "Remove a service and its queue",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.client.DeleteService(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Deleted")
			return nil
		}),
	}

	setOpen := func(use, short string, open bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <service-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				s, err := a.client.SetServiceOpen(cmd.Context(), args[0], open)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s open: %t\n", s.Name, s.Open)
				return nil
			}),
		}
	}

	next := &cobra.Command{
		Use:   "next <service-id>",
		Short: "Serve the current ticket and call the next one",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ticket, err := a.client.CallNext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTicket(a.out, ticket)
			return nil
		}),
	}

	cmd.AddCommand(users, create, remove, setOpen("open", "Accept new tickets", true), setOpen("close", "Stop accepting new tickets", false), next)
	return cmd
}

// requireLogin fails early instead of sending a request without credentials
func requireLogin(cmd *cobra.Command, a *app) error {
	if !a.store.IsAuthenticated(cmd.Context()) {
		return fmt.Errorf("%w: run 'vitevite login' first", apperrors.ErrNotAuthenticated)
	}
	return nil
}

func printTicket(out io.Writer, t *apimodel.Ticket) {
	fmt.Fprintf(out, "Ticket %s\n  Service:  %s\n  Number:   %d\n  Status:   %s\n", t.ID, t.ServiceName, t.Number, t.Status)
	if t.Status == apimodel.TicketWaiting {
		fmt.Fprintf(out, "  Position: %d\n  Wait:     about %d min\n", t.Position, t.EstimatedWaitMinutes)
	}
}

func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
