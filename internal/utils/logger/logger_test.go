package logger

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zapcore"

	"github.com/xrpyield/bridge-backend/internal/types/environments"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	var logger *Logger

	Describe("#New", func() {
		It("should create a new logger with production config when environment is production", func() {
			logger = New(environments.Production)
			Expect(logger).NotTo(BeNil())
			Expect(logger.wrappedLogger).NotTo(BeNil())
			Expect(logger.wrappedLogger.Core().Enabled(zapcore.InfoLevel)).To(BeTrue())
			Expect(logger.wrappedLogger.Core().Enabled(zapcore.DebugLevel)).To(BeFalse())
		})

		It("should create a new logger with development config when environment is development", func() {
			logger = New(environments.Development)
			Expect(logger).NotTo(BeNil())
			Expect(logger.wrappedLogger.Core().Enabled(zapcore.DebugLevel)).To(BeTrue())
		})

		It("should create a quiet logger when environment is test", func() {
			logger = New(environments.Test)
			Expect(logger).NotTo(BeNil())
			Expect(logger.wrappedLogger.Core().Enabled(zapcore.InfoLevel)).To(BeFalse())
		})

		It("should fall back to production config when environment is unknown", func() {
			logger = New(environments.Environment("unknown"))
			Expect(logger).NotTo(BeNil())
			Expect(logger.wrappedLogger.Core().Enabled(zapcore.InfoLevel)).To(BeTrue())
		})
	})

	Describe("#Info", func() {
		It("should not panic with or without fields", func() {
			logger = New(environments.Test)
			Expect(func() {
				logger.Info("plain message")
				logger.Info("message with fields", map[string]string{"request_id": "abc"})
			}).NotTo(Panic())
		})
	})
})
