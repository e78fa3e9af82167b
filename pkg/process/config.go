// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package process

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/zeebo/errs"
	yaml "gopkg.in/yaml.v2"
)

// SaveConfig will save the flags that were changed on cmd, or are annotated
// as user flags, to outfile with specific values specified in 'overrides'
// overridden. Flags annotated as setup or hidden are never saved.
func SaveConfig(cmd *cobra.Command, outfile string, overrides map[string]interface{}) error {
	vip, err := Viper(cmd)
	if err != nil {
		return err
	}

	settings := make(map[string]interface{})
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || readBoolAnnotation(f, "setup") {
			return
		}
		if !f.Changed && !readBoolAnnotation(f, "user") {
			return
		}
		settings[f.Name] = vip.Get(f.Name)
	})
	for key, value := range overrides {
		settings[key] = value
	}

	var data []byte
	if len(settings) > 0 {
		data, err = yaml.Marshal(nest(settings))
		if err != nil {
			return Error.Wrap(err)
		}
	}
	return Error.Wrap(atomicWrite(outfile, 0600, data))
}

// nest turns dotted keys into nested maps so the file reads naturally.
func nest(flat map[string]interface{}) map[string]interface{} {
	nested := make(map[string]interface{})
	for key, value := range flat {
		parts := strings.Split(key, ".")
		current := nested
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = value
	}
	return nested
}

// readBoolAnnotation is a helper to see if a boolean annotation is set to true on the flag.
func readBoolAnnotation(flag *pflag.Flag, key string) bool {
	annotation := flag.Annotations[key]
	return len(annotation) > 0 && annotation[0] == "true"
}

// atomicWrite is a helper to atomically write the data to the outfile.
func atomicWrite(outfile string, mode os.FileMode, data []byte) (err error) {
	fh, err := ioutil.TempFile(filepath.Dir(outfile), filepath.Base(outfile))
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, fh.Close())
			err = errs.Combine(err, os.Remove(fh.Name()))
		}
	}()
	if _, err := fh.Write(data); err != nil {
		return errs.Wrap(err)
	}
	if err := fh.Chmod(mode); err != nil {
		return errs.Wrap(err)
	}
	if err := fh.Sync(); err != nil {
		return errs.Wrap(err)
	}
	if err := fh.Close(); err != nil {
		return errs.Wrap(err)
	}
	if err := os.Rename(fh.Name(), outfile); err != nil {
		return errs.Wrap(err)
	}
	return nil
}
