package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/latticefield/engine"
	"github.com/sarchlab/latticefield/logging"
)

func TestLogging(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logging Suite")
}

var _ = Describe("Logger", func() {
	It("emits a JSON record containing the Trace message and level", func() {
		var buf bytes.Buffer
		l := logging.New(&buf, logging.LevelTrace)
		l.Trace("neighbor cache rebuilt", "rc", 2.0)

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record["msg"]).To(Equal("neighbor cache rebuilt"))
		Expect(record["rc"]).To(Equal(2.0))
	})

	It("suppresses Trace records below the configured minimum level", func() {
		var buf bytes.Buffer
		l := logging.New(&buf, slog.LevelWarn)
		l.Trace("should not appear")
		Expect(buf.Len()).To(Equal(0))
	})
})

var _ = Describe("EngineEventFunc", func() {
	It("routes EventInstabilityDetected through Warn", func() {
		var buf bytes.Buffer
		l := logging.New(&buf, slog.LevelInfo)
		fn := l.EngineEventFunc()

		fn(engine.Event{Kind: engine.EventInstabilityDetected, Message: "NaN at site 3"})

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record["level"]).To(Equal("WARN"))
		Expect(record["message"]).To(Equal("NaN at site 3"))
		Expect(record["kind"]).To(Equal("Instability Detected"))
	})
})
