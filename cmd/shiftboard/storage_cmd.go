package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	errKeyNotFound     = errors.New("key not found")
	errOperationFailed = errors.New("storage operation failed, see logs")
)

func (c *cli) storageCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Read and write the storage backends",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(cmd, args); err != nil {
				return err
			}
			if backend == "" {
				return nil
			}
			svc, err := c.app.backends.Lookup(backend)
			if err != nil {
				return err
			}
			c.app.manager.SetStorageService(svc)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "backend to use (local or cloud); defaults to storage.backend")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print the value stored under KEY",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, ok := c.app.manager.GetItem(cmd.Context(), args[0])
				if !ok {
					return fmt.Errorf("%s: %w", args[0], errKeyNotFound)
				}
				cmd.Println(value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Store VALUE under KEY",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !c.app.manager.SetItem(cmd.Context(), args[0], args[1]) {
					return errOperationFailed
				}
				return nil
			},
		},
		&cobra.Command{
			Use:     "rm KEY",
			Aliases: []string{"remove", "delete"},
			Short:   "Remove KEY",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !c.app.manager.RemoveItem(cmd.Context(), args[0]) {
					return errOperationFailed
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every entry of the backend",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if !c.app.manager.Clear(cmd.Context()) {
					return errOperationFailed
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the keys of the backend",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				for _, key := range c.app.manager.Keys(cmd.Context()) {
					cmd.Println(key)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show the space used by the backend",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				info, ok := c.app.manager.GetStorageInfo(cmd.Context())
				if !ok {
					return errOperationFailed
				}
				return printTable(cmd.OutOrStdout(), []string{"Key", "Value"}, [][]any{
					{"backend", c.app.manager.Name()},
					{"used", fmt.Sprintf("%s (%s bytes)", info.UsedHuman, humanize.Comma(info.Used))},
					{"available", info.AvailableHuman},
					{"capacity", humanize.IBytes(uint64(info.Capacity))},
					{"used %", fmt.Sprintf("%.2f", info.UsedPercent)},
				})
			},
		},
		c.migrateCmd(),
	)
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "migrate KEY...",
		Short: "Copy KEYs from one backend to the other",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, keys []string) error {
			source, err := c.app.backends.Lookup(from)
			if err != nil {
				return err
			}
			target, err := c.app.backends.Lookup(to)
			if err != nil {
				return err
			}
			copied := c.app.manager.MigrateData(cmd.Context(), source, target, keys)
			cmd.Printf("copied %d of %d keys from %s to %s\n", copied, len(keys), source.Name(), target.Name())
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "local", "source backend")
	cmd.Flags().StringVar(&to, "to", "cloud", "target backend")
	return cmd
}
