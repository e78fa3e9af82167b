// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"github.com/spf13/cobra"

	"storj.io/stratusvault/pkg/codec"
	"storj.io/stratusvault/pkg/process"
	"storj.io/stratusvault/vault"
)

var (
	rootCmd = &cobra.Command{
		Use:   "stratusvault",
		Short: "Upload, share and download documents",
	}
	setupCmd = &cobra.Command{
		Use:         "setup",
		Short:       "Create the config file and database tables",
		Args:        cobra.NoArgs,
		RunE:        cmdSetup,
		Annotations: map[string]string{"type": "setup"},
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the orphan reaper until interrupted",
		Args:  cobra.NoArgs,
		RunE:  cmdRun,
	}
	reapCmd = &cobra.Command{
		Use:   "reap",
		Short: "Run a single orphan reaper pass",
		Args:  cobra.NoArgs,
		RunE:  cmdReap,
	}
	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Register the caller so documents can be shared with them",
		Args:  cobra.NoArgs,
		RunE:  cmdLogin,
	}
	uploadCmd = &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a document",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdUpload,
	}
	lsCmd = &cobra.Command{
		Use:   "ls",
		Short: "List documents you own or that are shared with you",
		Args:  cobra.NoArgs,
		RunE:  cmdList,
	}
	downloadCmd = &cobra.Command{
		Use:   "download [id]",
		Short: "Download a document",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdDownload,
	}
	shareCmd = &cobra.Command{
		Use:   "share [id] [email]",
		Short: "Give a registered user read access to a document you own",
		Args:  cobra.ExactArgs(2),
		RunE:  cmdShare,
	}
	sharedWithCmd = &cobra.Command{
		Use:   "shared-with [id]",
		Short: "List the users a document you own is shared with",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdSharedWith,
	}
	rmCmd = &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a document you own",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdDelete,
	}

	uploadName        string
	uploadContentType string
	downloadOutput    string
	setupOverwrite    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String(process.ConfigDirFlag, process.DefaultConfigDir("stratusvault"), "main directory for stratusvault configuration")
	_ = flags.SetAnnotation(process.ConfigDirFlag, "setup", []string{"true"})

	flags.String("database", "sqlite3://$CONFDIR/vault.db", "metadata database connection string")
	flags.String("objects", "bolt://$CONFDIR/objects.db", "object store address, bolt://path, file://dir or s3://access:secret@host/bucket")
	flags.String("orphan-queue", "", "orphan queue address, redis://host:port or empty to use the database")
	flags.String("min-free-space", "100 MB", "minimum free disk space required to open a local object store")
	flags.String("max-upload-size", "64 MiB", "largest accepted document")
	flags.String("codec", codec.Default, "compression codec for new documents")
	flags.Duration("reaper.interval", vault.DefaultReaperInterval, "time between orphan reaper passes")
	flags.Int("reaper.batch-size", vault.DefaultReaperBatchSize, "orphaned objects removed per reaper pass")
	flags.String("subject", "", "identity provider subject of the caller")
	flags.String("email", "", "email address of the caller")
	for _, name := range []string{"database", "objects", "codec", "max-upload-size"} {
		_ = flags.SetAnnotation(name, "user", []string{"true"})
	}
	process.RegisterLogFlags(flags)

	setupCmd.Flags().BoolVar(&setupOverwrite, "overwrite", false, "replace an existing config file")
	_ = setupCmd.Flags().SetAnnotation("overwrite", "setup", []string{"true"})
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "document name, defaults to the file name")
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "content type, detected from the file extension when empty")
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "destination file, defaults to the document name")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reapCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(sharedWithCmd)
	rootCmd.AddCommand(rmCmd)
}

func main() {
	process.Exec(rootCmd)
}
