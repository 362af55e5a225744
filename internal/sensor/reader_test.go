package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/rs/zerolog"
)

// MockSource is a Source returning canned samples
type MockSource struct {
	sample    Sample
	err       error
	readCount int
	closed    bool
}

func (m *MockSource) Read() (Sample, error) {
	m.readCount++
	if m.err != nil {
		return Sample{}, m.err
	}
	return m.sample, nil
}

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

func TestReader_ReadOnce(t *testing.T) {
	mock := &MockSource{
		sample: Sample{Temperature: 26.5, Humidity: 65.0, Particulate: 12.0, Gas: 450.0},
	}

	info := models.NewControllerInfo("test-room", "Test Lab", "mock", "v1.0.0")
	reader := NewReader(mock, info, 30*time.Second, zerolog.Nop())

	reading, err := reader.ReadOnce()
	if err != nil {
		t.Fatalf("ReadOnce() failed: %v", err)
	}

	if reading == nil {
		t.Fatal("ReadOnce() returned nil reading")
	}
	if reading.Temperature != 26.5 || reading.Humidity != 65.0 {
		t.Errorf("climate = (%v, %v), want (26.5, 65.0)", reading.Temperature, reading.Humidity)
	}
	if reading.Particulate != 12.0 || reading.Gas != 450.0 {
		t.Errorf("air = (%v, %v), want (12.0, 450.0)", reading.Particulate, reading.Gas)
	}
	if reading.SensorID != "test-room" {
		t.Errorf("SensorID = %v, want test-room", reading.SensorID)
	}
	if reading.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestReader_ReadOnceError(t *testing.T) {
	mock := &MockSource{err: errors.New("sensor offline")}
	info := models.NewControllerInfo("test-room", "Test Lab", "mock", "v1.0.0")
	reader := NewReader(mock, info, 30*time.Second, zerolog.Nop())

	if _, err := reader.ReadOnce(); err == nil {
		t.Error("expected error from failing source")
	}
}

func TestReader_Start(t *testing.T) {
	mock := &MockSource{
		sample: Sample{Temperature: 26.5, Humidity: 65.0, Particulate: 12.0, Gas: 450.0},
	}

	info := models.NewControllerInfo("test-room", "Test Lab", "mock", "v1.0.0")
	reader := NewReader(mock, info, 50*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	go reader.Start(ctx)

	readings := []*models.Reading{}
	timeout := time.After(400 * time.Millisecond)

readLoop:
	for {
		select {
		case reading := <-reader.Readings():
			readings = append(readings, reading)
			if len(readings) >= 3 {
				break readLoop
			}
		case <-timeout:
			break readLoop
		}
	}

	if len(readings) < 2 {
		t.Errorf("collected %d readings, want at least 2", len(readings))
	}
}

func TestReader_Close(t *testing.T) {
	mock := &MockSource{}
	info := models.NewControllerInfo("test-room", "Test Lab", "mock", "v1.0.0")
	reader := NewReader(mock, info, time.Second, zerolog.Nop())

	if err := reader.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !mock.closed {
		t.Error("Close() did not close the source")
	}
}

func TestSimSource_Deterministic(t *testing.T) {
	a := NewSimSource()
	b := NewSimSource()

	for i := 0; i < 50; i++ {
		sa, errA := a.Read()
		sb, errB := b.Read()
		if errA != nil || errB != nil {
			t.Fatalf("sim read failed: %v / %v", errA, errB)
		}
		if sa != sb {
			t.Fatalf("step %d: %+v != %+v", i, sa, sb)
		}
	}
}

func TestSimSource_ValuesInDomain(t *testing.T) {
	s := NewSimSource()
	for i := 0; i < 500; i++ {
		sample, err := s.Read()
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if err := validateSample(sample); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestStaticAir(t *testing.T) {
	feed := StaticAir{Particulate: 12, Gas: 450}
	pm, gas, err := feed.Air()
	if err != nil {
		t.Fatalf("Air() failed: %v", err)
	}
	if pm != 12 || gas != 450 {
		t.Errorf("Air() = (%v, %v), want (12, 450)", pm, gas)
	}
}
