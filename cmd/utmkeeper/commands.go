/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/trickstercache/utmkeeper/cmd/utmkeeper/config"
	"github.com/trickstercache/utmkeeper/pkg/cache/memory"
	"github.com/trickstercache/utmkeeper/pkg/session"
	"github.com/trickstercache/utmkeeper/pkg/utm"

	"github.com/spf13/cobra"
)

// ErrInvalidInspectURL indicates an inspect argument that is not a URL
var ErrInvalidInspectURL = errors.New("invalid url")

func newRootCmd(environ []string) *cobra.Command {
	flags := &config.Flags{}
	envMap := config.EnvironMap(environ)

	root := &cobra.Command{
		Use:           applicationName,
		Short:         "utmkeeper keeps marketing parameters on the URL for the whole browser session",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(flags, envMap)
			if err != nil {
				return fmt.Errorf("could not load configuration: %w", err)
			}
			return serve(cmd.Context(), conf)
		},
	}
	flags.Register(root.PersistentFlags())

	root.AddCommand(
		newVersionCmd(),
		newValidateConfigCmd(flags, envMap),
		newInspectCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the utmkeeper version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s version: %s, buildInfo: %s %s, goVersion: %s, goArch: %s\n",
		applicationName, applicationVersion, applicationBuildTime,
		applicationGitCommitID, applicationGoVersion, applicationGoArch)
}

func newValidateConfigCmd(flags *config.Flags, envMap map[string]string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Validates the utmkeeper config and exits without running the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(flags, envMap)
			if err != nil {
				return fmt.Errorf("could not load configuration: %w", err)
			}
			for _, w := range conf.LoaderWarnings {
				fmt.Fprintln(cmd.OutOrStdout(), "WARNING:", w)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "utmkeeper configuration validation succeeded.")
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	var snapshot string
	cmd := &cobra.Command{
		Use:   "inspect <url>",
		Short: "Runs the persist procedure for a URL against an in-memory session and prints the outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd, args[0], snapshot, cmd.Flags().Changed("snapshot"))
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "",
		"JSON snapshot already stored in the session, e.g. '{\"utm_source\":\"newsletter\"}'")
	return cmd
}

func inspect(cmd *cobra.Command, rawURL, snapshot string, hasSnapshot bool) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInspectURL, err)
	}

	mc := memory.New("inspect", nil)
	if err := mc.Connect(); err != nil {
		return err
	}
	defer mc.Close()
	store, err := session.New(mc, nil, nil)
	if err != nil {
		return err
	}
	sc := store.Scope(session.NewID())

	ctx := cmd.Context()
	if hasSnapshot {
		if err := sc.Save(ctx, []byte(snapshot)); err != nil {
			return err
		}
	}

	res, err := utm.NewPersistor(nil, nil).Persist(ctx, sc, u)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "outcome:  %s\n", res.Outcome)
	fmt.Fprintf(w, "changed:  %t\n", res.Changed)
	fmt.Fprintf(w, "url:      %s\n", res.URL.String())
	if b, ok, err := sc.Load(ctx); err == nil && ok {
		fmt.Fprintf(w, "snapshot: %s\n", b)
	}
	return nil
}
