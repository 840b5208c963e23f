package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kankokujin/kankokujin-no-map/internal/adapters/repository"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
)

func TestWatch(t *testing.T) {
	Convey("Given a watched data file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "mappers.json")
		So(os.WriteFile(path, []byte(`{"mappers":[]}`), 0o644), ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changed := make(chan struct{}, 8)
		done := make(chan error, 1)
		go func() {
			done <- repository.Watch(ctx, path, 20*time.Millisecond, func() { changed <- struct{}{} })
		}()
		// Give the watcher time to register the directory.
		time.Sleep(100 * time.Millisecond)

		Convey("When an unrelated file in the directory changes", func() {
			So(os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644), ShouldBeNil)

			Convey("Then no change is reported", func() {
				select {
				case <-changed:
					So("unexpected change", ShouldBeEmpty)
				case <-time.After(200 * time.Millisecond):
				}
			})
		})

		Convey("When the file is replaced atomically", func() {
			s := repository.NewFileStore(path, filepath.Join(dir, "state.json"))
			So(s.SaveDataset(context.Background(), model.Dataset{TotalMappers: 1}), ShouldBeNil)

			Convey("Then a change is reported", func() {
				select {
				case <-changed:
				case <-time.After(3 * time.Second):
					So("no change reported", ShouldBeEmpty)
				}
			})
		})

		Convey("When the context is cancelled", func() {
			cancel()

			Convey("Then Watch returns without error", func() {
				select {
				case err := <-done:
					So(err, ShouldBeNil)
				case <-time.After(3 * time.Second):
					So("watch did not stop", ShouldBeEmpty)
				}
			})
		})
	})
}
