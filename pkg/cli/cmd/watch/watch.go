/* Copyright 2025 Shelfsync Authors
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

// Package watch implements the watch command
package watch

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/shelfsync/shelfsync/pkg/cli/cmd/upload"
	"github.com/shelfsync/shelfsync/pkg/cli/context"
	"github.com/shelfsync/shelfsync/pkg/cli/infra"
	"github.com/shelfsync/shelfsync/pkg/cli/log"
	"github.com/spf13/cobra"
)

var example = `
  * Upload the export file whenever the reader rewrites it
  shelfsync watch /media/KOBOeReader/.adds/shelfsync/export.json`

var (
	interval    time.Duration
	incremental bool
)

// NewCmd returns a new watch command
func NewCmd(ctx *context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch <export file>",
		Short:   "Upload an export file every time it changes",
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.DurationVar(&interval, "interval", time.Second, "how often to poll the file for changes")
	f.BoolVarP(&incremental, "incremental", "i", false, "upload annotations without detecting deletions")

	return cmd
}

func newRun(ctx *context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		path := args[0]

		mode := ""
		if incremental {
			mode = upload.ModeIncremental
		}

		stop := make(chan struct{})
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)
		go func() {
			<-sig
			close(stop)
		}()

		return Run(path, interval, stop, func() error {
			_, err := upload.File(*ctx, path, mode)
			return err
		})
	}
}

// Run calls fn once and then after every write to the file at path until
// stop is closed. Upload failures are reported and do not end the watch.
func Run(path string, interval time.Duration, stop <-chan struct{}, fn func() error) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(err, "looking up %s", path)
	}

	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create)

	if err := w.Add(path); err != nil {
		return errors.Wrapf(err, "watching %s", path)
	}

	if err := fn(); err != nil {
		log.Errorf("%s\n", err.Error())
	}

	done := make(chan struct{})
	abort := make(chan struct{})
	go func() {
		defer close(done)

		stopping := false
		for {
			select {
			case event := <-w.Event:
				if stopping {
					continue
				}
				log.Debug("%s\n", event.String())
				if err := fn(); err != nil {
					log.Errorf("%s\n", err.Error())
				}
			case err := <-w.Error:
				log.Warnf("watcher: %s\n", err.Error())
			case <-stop:
				stop = nil
				stopping = true
				// Close is a no-op until Start runs. Keep draining events so
				// the poller can receive the close.
				go func() {
					w.Wait()
					w.Close()
				}()
			case <-w.Closed:
				return
			case <-abort:
				return
			}
		}
	}()

	log.Infof("watching %s\n", path)

	if err := w.Start(interval); err != nil {
		close(abort)
		<-done
		return errors.Wrap(err, "starting the watcher")
	}
	<-done

	return nil
}
