package vrecord

import (
	"github.com/vuuvv/vrecord/core"
	"github.com/vuuvv/vrecord/log"
	"github.com/vuuvv/vrecord/node"
	"github.com/vuuvv/vrecord/pipeline"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Scheme = core.Scheme

var NewScheme = core.NewScheme
var NewSchemeFromFile = core.NewSchemeFromFile

type PacketDef = core.PacketDef
type LocatedLayout = core.LocatedLayout
type Value = core.Value
type Point = core.Point
type Policy = core.Policy

var Locate = core.Locate
var Decode = core.Decode
var DecodeLocated = core.DecodeLocated

type Options = pipeline.Options
type Stats = pipeline.Stats

var Execute = pipeline.Execute

// Setup installs a logger at level unless one is already configured globally
// and registers the schema node compilers.
func Setup(level string) error {
	var logger *zap.Logger
	var err error
	if !zap.L().Core().Enabled(zapcore.PanicLevel) {
		logger, err = log.New(level)
		if err != nil {
			return err
		}
	} else {
		logger = zap.L()
	}
	log.SetLogger(logger)
	log.SetDefaultLogger(logger)

	node.Register()
	return nil
}
