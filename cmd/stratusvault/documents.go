// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/stratusvault/vault"
)

// documentCommand loads the config and runs fn as the configured caller.
// Errors coming back from fn are reduced to their public message.
func documentCommand(cmd *cobra.Command, fn func(ctx context.Context, service *vault.Service, caller vault.Caller) error) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Caller.Validate(); err != nil {
		return Error.New("--subject is required")
	}

	return withPeer(cmd, config, func(ctx context.Context, peer *Peer) error {
		return publicError(peer.Log, fn(ctx, peer.Service, config.Caller))
	})
}

func publicError(log *zap.Logger, err error) error {
	if err == nil {
		return nil
	}
	if vault.StatusOf(err) == vault.StatusInternal {
		log.Error("request failed", zap.Error(err))
	}
	return Error.New("%s", vault.PublicMessage(err))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, Error.New("invalid document id %q", arg)
	}
	return id, nil
}

func cmdLogin(cmd *cobra.Command, args []string) (err error) {
	return documentCommand(cmd, func(ctx context.Context, service *vault.Service, caller vault.Caller) error {
		user, err := service.SignIn(ctx, caller)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (user %d)\n", user.Email, user.ID)
		return nil
	})
}

func cmdUpload(cmd *cobra.Command, args []string) (err error) {
	path := args[0]
	file, err := os.Open(path)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, file.Close()) }()

	name := uploadName
	if name == "" {
		name = filepath.Base(path)
	}
	contentType := uploadContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}

	return documentCommand(cmd, func(ctx context.Context, service *vault.Service, caller vault.Caller) error {
		summary, err := service.Upload(ctx, caller, vault.UploadRequest{
			Name:        name,
			ContentType: contentType,
			Data:        file,
		})
		if err != nil {
			return err
		}
		fmt.Printf("uploaded %d %s (%s, stored as %s)\n", summary.ID, summary.Name,
			humanize.Bytes(uint64(summary.OriginalSize)), humanize.Bytes(uint64(summary.StoredSize)))
		return nil
	})
}

func cmdList(cmd *cobra.Command, args []string) (err error) {
	return documentCommand(cmd, func(ctx context.Context, service *vault.Service, caller vault.Caller) error {
		summaries, err := service.List(ctx, caller)
		if err != nil {
			return err
		}
		return printSummaries(os.Stdout, summaries)
	})
}

func printSummaries(w io.Writer, summaries []vault.DocumentSummary) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tSTORED\tTYPE\tACCESS\tCREATED")
	for _, summary := range summaries {
		access := "shared"
		if summary.Owned {
			access = "owner"
		}
		contentType := summary.ContentType
		if contentType == "" {
			contentType = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			summary.ID, summary.Name,
			humanize.Bytes(uint64(summary.OriginalSize)),
			humanize.Bytes(uint64(summary.StoredSize)),
			contentType, access,
			humanize.Time(summary.CreatedAt))
	}
	return tw.Flush()
}

func cmdDownload(cmd *cobra.Command, args []string) (err error) {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var file *vault.File
	err = documentCommand(cmd, func(ctx context.Context, service *vault.Service, caller vault.Caller) (err error) {
		file, err = service.Download(ctx, caller, id)
		return err
	})
	if err != nil {
		return err
	}

	output := downloadOutput
	if output == "-" {
		_, err := os.Stdout.Write(file.Data)
		return Error.Wrap(err)
	}
	if output == "" {
		output = localName(file.Name, id)
	}
	if err := ioutil.WriteFile(output, file.Data, 0644); err != nil {
		return Error.Wrap(err)
	}
	fmt.Printf("downloaded %d to %s (%s)\n", id, output, humanize.Bytes(uint64(len(file.Data))))
	return nil
}

// localName turns a document name into a file name inside the working directory.
func localName(name string, id int64) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." {
		return fmt.Sprintf("document-%d", id)
	}
	return base
}

func cmdShare(cmd *cobra.Command, args []string) (err error) {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	email := args[1]

	return documentCommand(cmd, func(ctx context.Context, service *vault.Service, caller vault.Caller) error {
		if err := service.Share(ctx, caller, id, email); err != nil {
			return err
		}
		fmt.Printf("shared %d with %s\n", id, email)
		return nil
	})
}

func cmdSharedWith(cmd *cobra.Command, args []string) (err error) {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return documentCommand(cmd, func(ctx context.Context, service *vault.Service, caller vault.Caller) error {
		emails, err := service.SharedWith(ctx, caller, id)
		if err != nil {
			return err
		}
		for _, email := range emails {
			fmt.Println(email)
		}
		return nil
	})
}

func cmdDelete(cmd *cobra.Command, args []string) (err error) {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return documentCommand(cmd, func(ctx context.Context, service *vault.Service, caller vault.Caller) error {
		if err := service.Delete(ctx, caller, id); err != nil {
			return err
		}
		fmt.Printf("deleted %d\n", id)
		return nil
	})
}
