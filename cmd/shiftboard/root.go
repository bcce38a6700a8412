package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"shiftboard/internal/config"
)

// cli carries the state shared by every command of one invocation
type cli struct {
	configPath string
	app        *Application

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// run executes the command line args and releases the application
// whatever the outcome
func run(args []string, in io.Reader, out, errOut io.Writer) error {
	c := &cli{in: in, out: out, errOut: errOut}
	root := c.rootCmd()
	root.SetArgs(args)

	err := root.Execute()
	if c.app != nil {
		err = errors.Join(err, c.app.Close())
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Shift planning dashboard with simulated export and storage backends",
		Long: `
Usage: shiftboard <command> [options]

  shiftboard serves the dashboard API and gives command line access to its
  storage backends and export services. Configuration is read from an
  optional YAML file (--config) and SHIFTBOARD_* environment variables.

      $ shiftboard serve --config=/etc/shiftboard.yaml
      $ shiftboard storage keys --backend=cloud
      $ shiftboard export pdf employees --input=staff.json
  `,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML configuration file")

	root.AddCommand(
		c.serveCmd(),
		c.storageCmd(),
		c.exportCmd(),
		c.versionCmd(),
	)
	return root
}

// setup loads the configuration and builds the application
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	app, err := NewApplication(cfg, c.errOut)
	if err != nil {
		return err
	}
	c.app = app
	return nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", appName, version)
		},
	}
}
