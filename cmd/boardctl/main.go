// boardctl is the command line surface of the media board client:
// inspect the shared backing record, create it when absent, and submit
// new links to it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mediaboard/mediaboard/board"
	"github.com/mediaboard/mediaboard/config"
	"github.com/mediaboard/mediaboard/keys"
	"github.com/mediaboard/mediaboard/logger"
	"github.com/mediaboard/mediaboard/program"
	"github.com/mediaboard/mediaboard/wallet"
)

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Media board client",
	Long:  "Read and append entries to the shared on-chain media board.",
}

var (
	flagHome   string
	flagOutput string
)

func init() {
	defaultHome := ".mediaboard"
	if home, err := os.UserHomeDir(); err == nil {
		defaultHome = filepath.Join(home, ".mediaboard")
	}

	rootCmd.PersistentFlags().StringVar(&flagHome, "home", defaultHome, "Client home directory")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format: json|text")

	rootCmd.AddCommand(initConfigCmd())
	rootCmd.AddCommand(keygenCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(submitCmd())
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write the default configuration to the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefaultConfig()
			if err != nil {
				return err
			}
			if err := config.Save(cfg, flagHome); err != nil {
				return err
			}
			fmt.Printf("wrote default config under %s\n", flagHome)
			return nil
		},
	}
}

func keygenCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a keypair in solana-keygen format",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := keys.NewKeypair()
			if err := keys.SaveKeypair(outPath, w); err != nil {
				return err
			}
			fmt.Printf("wrote keypair for %s to %s\n", w.PublicKey(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "wallet.json", "Output path for the keypair file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current board state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := buildController(cmd.Context())
			if err != nil {
				return err
			}
			return printSnapshot(ctrl.Snapshot())
		},
	}
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create the backing record when it does not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := buildController(cmd.Context())
			if err != nil {
				return err
			}
			if err := ctrl.CreateBackingRecord(cmd.Context()); err != nil {
				return err
			}
			return printSnapshot(ctrl.Snapshot())
		},
	}
}

func submitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <link>",
		Short: "Submit a media link to the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := buildController(cmd.Context())
			if err != nil {
				return err
			}
			if err := ctrl.SubmitEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printSnapshot(ctrl.Snapshot())
		},
	}
}

// buildController assembles the full client: config, logger, wallet
// session, program client and sync controller, then authenticates and
// performs the initial fetch.
func buildController(ctx context.Context) (*board.Controller, error) {
	cfg, err := config.Load(flagHome)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	session := wallet.NewSession(wallet.NewKeypairProvider(resolvePath(cfg.WalletKeypairPath)), log)
	identity, ok, err := session.ConnectSilently(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		identity, err = session.ConnectInteractive(ctx)
		if err != nil {
			return nil, err
		}
	}

	recordKey, err := keys.LoadKeypair(resolvePath(cfg.RecordKeypairPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load backing record keypair: %w", err)
	}

	signer, err := session.Signer()
	if err != nil {
		return nil, err
	}

	client, err := program.NewClient(cfg, recordKey, identity, signer, log)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnection(ctx); err != nil {
		return nil, err
	}

	ctrl := board.NewController(client, log)
	if err := ctrl.OnAuthenticated(ctx, identity); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// resolvePath interprets relative key paths against the home directory.
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(flagHome, path)
}

func printSnapshot(snap board.Snapshot) error {
	if flagOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshotView(snap))
	}

	fmt.Printf("identity: %s\n", snap.Identity)
	fmt.Printf("status:   %s\n", snap.Status)
	switch snap.Status {
	case board.StatusUninitialized:
		fmt.Println("the backing record does not exist yet; run `boardctl create`")
	case board.StatusReady:
		fmt.Printf("entries:  %d\n", len(snap.Entries))
		for i, e := range snap.Entries {
			fmt.Printf("  %3d. %s  (by %s)\n", i+1, e.Link, e.SubmittedBy)
		}
	case board.StatusReadFailed:
		fmt.Printf("last error: %v\n", snap.LastErr)
	}
	return nil
}

type entryView struct {
	Link        string `json:"link"`
	SubmittedBy string `json:"submitted_by"`
}

type boardView struct {
	Identity string      `json:"identity"`
	Status   string      `json:"status"`
	Total    uint64      `json:"total"`
	Entries  []entryView `json:"entries"`
	Error    string      `json:"error,omitempty"`
}

func snapshotView(snap board.Snapshot) boardView {
	view := boardView{
		Identity: snap.Identity.String(),
		Status:   snap.Status.String(),
		Total:    snap.Total,
		Entries:  make([]entryView, 0, len(snap.Entries)),
	}
	for _, e := range snap.Entries {
		view.Entries = append(view.Entries, entryView{
			Link:        e.Link,
			SubmittedBy: e.SubmittedBy.String(),
		})
	}
	if snap.LastErr != nil {
		view.Error = snap.LastErr.Error()
	}
	return view
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
