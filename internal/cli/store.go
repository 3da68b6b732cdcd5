package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmathys/orgcanvas/pkg/chart"
	"github.com/kmathys/orgcanvas/pkg/store"
)

// storeCommand creates the store command with its subcommands.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage charts in the configured persistence backend",
		Long: `Manage charts in the configured persistence backend.

The backend is selected in the TOML config file ([store] section) and
defaults to per-user files under ~/.config/orgcanvas/charts/. Redis and
MongoDB backends are available for shared deployments.`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeShowCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	return cmd
}

// openStore builds the configured backend.
func (c *CLI) openStore(cmd *cobra.Command) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.OpenStore(cmd.Context())
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored chart names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println(StyleDim.Render("no charts stored"))
				return nil
			}
			for _, name := range names {
				fmt.Println(StyleValue.Render(name))
			}
			return nil
		},
	}
}

func (c *CLI) storeSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save [name] [chart.json]",
		Short: "Save a chart file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, input := args[0], args[1]

			doc, err := chart.Import(input)
			if err != nil {
				return fmt.Errorf("load chart %s: %w", input, err)
			}
			// Reject structurally broken charts before they reach the store.
			if _, _, err := chart.ToForest(doc); err != nil {
				return err
			}
			doc.Name = name

			s, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Save(cmd.Context(), name, doc); err != nil {
				return err
			}
			printSuccess("Saved %q", name)
			printStats(len(doc.Nodes), len(doc.Edges))
			return nil
		},
	}
}

func (c *CLI) storeShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a stored chart as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			doc, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output != "" {
				if err := chart.Export(doc, output); err != nil {
					return err
				}
				printFile(output)
				return nil
			}
			return chart.Write(doc, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %q", args[0])
			return nil
		},
	}
}
