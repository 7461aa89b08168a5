package bitcoin

import "go.uber.org/zap"

// log is the package-wide structured logger. It defaults to a no-op
// logger so library code never panics before SetLogger is called by a
// command's main().
var log *zap.SugaredLogger = zap.NewNop().Sugar()

// SetLogger installs the logger commands build at startup (cmd/scriptcheck
// and cmd/scriptsrv construct one with zap.NewProduction and call this
// once, before doing any verification work).
func SetLogger(l *zap.SugaredLogger) {
	log = l
}

// ScriptTracer implements script.Tracer, logging one opcode step per
// callback at debug level, mirroring hsk81-btcscript's log.Tracef
// instrumentation of its interpreter loop. It costs nothing when the
// installed logger is the no-op default, since zap's SugaredLogger
// drops Debugw calls below its configured level before formatting.
type ScriptTracer struct{}

func (ScriptTracer) TraceStep(index int, opName string, stackDepth int) {
	log.Debugw("script step",
		"index", index,
		"op", opName,
		"stackDepth", stackDepth,
	)
}
