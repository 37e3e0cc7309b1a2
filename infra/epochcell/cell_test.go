package epochcell

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newStr(s string) *string { return &s }

func TestReadUpdateRead(t *testing.T) {
	c := New(newStr("A"))

	if n := Read(c, func(s *string) int { return len(*s) }); n != 1 {
		t.Errorf("expected length 1, got %d", n)
	}

	old, epoch := c.Update(newStr("BBBB"))
	if *old != "A" {
		t.Errorf("expected displaced value A, got %q", *old)
	}
	if epoch != 1 {
		t.Errorf("first retirement should be epoch 1, got %d", epoch)
	}

	if n := Read(c, func(s *string) int { return len(*s) }); n != 4 {
		t.Errorf("expected length 4, got %d", n)
	}

	if !c.CanReclaim(epoch) {
		t.Error("no reader is active, epoch 1 must be reclaimable")
	}
}

func TestEpochMonotonicity(t *testing.T) {
	c := New(newStr("x"))
	var last uint64
	for i := 0; i < 10; i++ {
		_, e := c.Update(newStr("y"))
		if e <= last {
			t.Fatalf("retire epochs not strictly increasing: %d after %d", e, last)
		}
		last = e
	}
}

func TestSlotReleasedAfterRead(t *testing.T) {
	c := New(newStr("v"))
	Read(c, func(s *string) int { return 0 })
	for i := range c.slots {
		if v := c.slots[i].epoch.Load(); v != 0 {
			t.Errorf("slot %d still claims epoch %d after read returned", i, v)
		}
	}
}

func TestSlotReleasedOnVisitorPanic(t *testing.T) {
	c := New(newStr("v"))
	func() {
		defer func() { recover() }()
		Read(c, func(s *string) int { panic("visitor") })
	}()
	for i := range c.slots {
		if v := c.slots[i].epoch.Load(); v != 0 {
			t.Errorf("slot %d leaked epoch %d across a visitor panic", i, v)
		}
	}
}

// poisoned simulates reclamation: the owner flips the flag when it
// believes no reader can still see the value.
type poisoned struct {
	data string
	bad  atomic.Bool
}

func TestNoUseAfterReclaim(t *testing.T) {
	const (
		readers = 4
		updates = 20
	)

	c := New(&poisoned{data: "initial"})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	var violations atomic.Uint64

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				Read(c, func(p *poisoned) int {
					if p.bad.Load() {
						violations.Add(1)
					}
					return len(p.data)
				})
			}
		}()
	}

	var retired []*poisoned
	var epochs []uint64
	for i := 0; i < updates; i++ {
		old, e := c.Update(&poisoned{data: "generation"})
		retired = append(retired, old)
		epochs = append(epochs, e)

		// Reclaim everything that is now safe and poison it.
		for j := 0; j < len(retired); j++ {
			if retired[j] != nil && c.CanReclaim(epochs[j]) {
				retired[j].bad.Store(true)
				retired[j] = nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}

	close(stop)
	wg.Wait()

	if n := violations.Load(); n != 0 {
		t.Errorf("%d reads observed a reclaimed value", n)
	}
}

func TestUnreclaimableWhileReaderInside(t *testing.T) {
	c := New(newStr("held"))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		Read(c, func(s *string) int {
			close(entered)
			<-release
			return 0
		})
		close(done)
	}()

	<-entered
	_, e := c.Update(newStr("next"))
	if c.CanReclaim(e) {
		t.Error("epoch reclaimable while a pre-update reader is still inside")
	}
	close(release)
	<-done
	if !c.CanReclaim(e) {
		t.Error("epoch still unreclaimable after the reader left")
	}
}

func TestAllSlotsOccupied(t *testing.T) {
	c := New(newStr("busy"))

	var wg sync.WaitGroup
	entered := make(chan struct{}, NumSlots)
	release := make(chan struct{})

	// Park a reader in every slot.
	for i := 0; i < NumSlots; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Read(c, func(s *string) int {
				entered <- struct{}{}
				<-release
				return 0
			})
		}()
	}
	for i := 0; i < NumSlots; i++ {
		<-entered
	}

	// One more reader must still make progress once a slot frees up.
	extra := make(chan int)
	go func() {
		extra <- Read(c, func(s *string) int { return len(*s) })
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case n := <-extra:
		if n != 4 {
			t.Errorf("expected length 4, got %d", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reader deadlocked with all slots occupied")
	}
	wg.Wait()
}

func TestCloseDrainsReaders(t *testing.T) {
	c := New(newStr("final"))

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		Read(c, func(s *string) int {
			close(entered)
			<-release
			return 0
		})
	}()
	<-entered

	closed := make(chan *string)
	go func() {
		closed <- c.Close()
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a reader was still inside")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	v := <-closed
	if v == nil || *v != "final" {
		t.Errorf("Close should hand back the last value, got %v", v)
	}

	// A read after close sees the zero result.
	if n := Read(c, func(s *string) int { return len(*s) }); n != 0 {
		t.Errorf("read after close should default, got %d", n)
	}
}

func BenchmarkRead(b *testing.B) {
	c := New(newStr("benchmark-value"))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			Read(c, func(s *string) int { return len(*s) })
		}
	})
}

func BenchmarkReadWithWriter(b *testing.B) {
	c := New(newStr("benchmark-value"))
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				c.Update(newStr("replacement"))
				time.Sleep(time.Millisecond)
			}
		}
	}()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			Read(c, func(s *string) int { return len(*s) })
		}
	})
	close(stop)
}
