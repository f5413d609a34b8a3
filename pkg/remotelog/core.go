package remotelog

import (
	"encoding/json"

	"go.uber.org/zap/zapcore"
)

const defaultPackage = "app"

// core is a zapcore.Core that forwards entries to a Shipper.
// The logger name becomes the package label.
type core struct {
	zapcore.LevelEnabler
	shipper *Shipper
	stack   string
	fields  []zapcore.Field
}

// NewCore returns a core to be teed with the local cores of a zap logger.
func NewCore(shipper *Shipper, stack string, enab zapcore.LevelEnabler) zapcore.Core {
	return &core{
		LevelEnabler: enab,
		shipper:      shipper,
		stack:        stack,
	}
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return &clone
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	pkg := ent.LoggerName
	if pkg == "" {
		pkg = defaultPackage
	}

	c.shipper.Record(c.stack, ent.Level.String(), pkg, renderMessage(ent.Message, c.fields, fields))
	return nil
}

func (c *core) Sync() error {
	return nil
}

// renderMessage appends structured fields to the message as a JSON object.
func renderMessage(msg string, groups ...[]zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, fields := range groups {
		for _, f := range fields {
			f.AddTo(enc)
		}
	}
	if len(enc.Fields) == 0 {
		return msg
	}

	b, err := json.Marshal(enc.Fields)
	if err != nil {
		return msg
	}
	return msg + " " + string(b)
}
