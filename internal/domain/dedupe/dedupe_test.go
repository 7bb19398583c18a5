package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/mentormatch/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When recording events", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then a new id is recorded and a repeat is reported", func() {
				So(d.SeenAndRecord(ctx, "fb-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "fb-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording an event", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "fb-1")
			d.Unrecord(ctx, "fb-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "fb-1"), ShouldBeFalse)
			})
		})

		Convey("When the bounded cache is full", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, id := range []string{"e1", "e2", "e3", "e4"} {
				So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
			}

			Convey("Then the oldest id is evicted and the newest are kept", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "e4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "e3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "e1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("event-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
				So(d.SeenAndRecord(ctx, "event-0"), ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper shared by goroutines", t, func() {
		ctx := context.Background()

		for _, size := range []int{1000, -1} {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(size))
			const workers, perWorker = 10, 100

			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perWorker; j++ {
						// Every worker races on the same ids.
						if !d.SeenAndRecord(ctx, fmt.Sprintf("event-%d", j)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			So(fresh, ShouldEqual, perWorker)
			So(d.Size(), ShouldEqual, perWorker)
		}
	})
}
