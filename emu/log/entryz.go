package log

import (
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

// A Context contributes fields to every emitted entry. The System registers
// one to stamp each line with the current tick count.
type Context interface {
	AddLogContext(e *EntryZ)
}

var contexts []Context

func AddContext(c Context) {
	contexts = append(contexts, c)
}

// EntryZ is a pooled structured log entry. Fields accumulate into a fixed
// buffer without allocating; End builds the logrus fields map, emits the line
// and recycles the entry.
//
// All methods are nil-safe: when the module is disabled the builder returned
// by DebugZ and friends is nil and the whole chain is a no-op.
type EntryZ struct {
	mod   Module
	lvl   Level
	msg   string
	zfbuf [16]ZField
	zfidx int
}

var entryzPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	e := entryzPool.Get().(*EntryZ)
	e.zfidx = 0
	return e
}

func (e *EntryZ) append(f ZField) *EntryZ {
	if e == nil {
		return nil
	}
	if e.zfidx < len(e.zfbuf) {
		e.zfbuf[e.zfidx] = f
		e.zfidx++
	}
	return e
}

func (e *EntryZ) String(key, val string) *EntryZ {
	return e.append(ZField{Type: FieldTypeString, Key: key, String: val})
}

func (e *EntryZ) Stringer(key string, val interface{ String() string }) *EntryZ {
	if e == nil {
		return nil
	}
	return e.append(ZField{Type: FieldTypeString, Key: key, String: val.String()})
}

func (e *EntryZ) Bool(key string, val bool) *EntryZ {
	return e.append(ZField{Type: FieldTypeBool, Key: key, Boolean: val})
}

func (e *EntryZ) Int(key string, val int) *EntryZ {
	return e.append(ZField{Type: FieldTypeInt, Key: key, Integer: uint64(val)})
}

func (e *EntryZ) Uint8(key string, val uint8) *EntryZ {
	return e.append(ZField{Type: FieldTypeUint, Key: key, Integer: uint64(val)})
}

func (e *EntryZ) Uint64(key string, val uint64) *EntryZ {
	return e.append(ZField{Type: FieldTypeUint, Key: key, Integer: val})
}

func (e *EntryZ) Hex8(key string, val uint8) *EntryZ {
	return e.append(ZField{Type: FieldTypeHex8, Key: key, Integer: uint64(val)})
}

func (e *EntryZ) Hex16(key string, val uint16) *EntryZ {
	return e.append(ZField{Type: FieldTypeHex16, Key: key, Integer: uint64(val)})
}

func (e *EntryZ) Error(key string, err error) *EntryZ {
	return e.append(ZField{Type: FieldTypeError, Key: key, Error: err})
}

func (e *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	return e.append(ZField{Type: FieldTypeDuration, Key: key, Duration: d})
}

// End emits the entry and returns it to the pool. The entry must not be used
// afterwards.
func (e *EntryZ) End() {
	if e == nil {
		return
	}

	for _, c := range contexts {
		c.AddLogContext(e)
	}

	fields := make(logrus.Fields, e.zfidx+1)
	fields["_mod"] = modNames[e.mod]
	for i := range e.zfbuf[:e.zfidx] {
		fields[e.zfbuf[i].Key] = e.zfbuf[i].Value()
	}

	entry := logrus.StandardLogger().WithFields(fields)
	switch e.lvl {
	case DebugLevel:
		entry.Debug(e.msg)
	case InfoLevel:
		entry.Info(e.msg)
	case WarnLevel:
		entry.Warn(e.msg)
	case ErrorLevel:
		entry.Error(e.msg)
	case FatalLevel:
		entry.Fatal(e.msg)
	case PanicLevel:
		entry.Panic(e.msg)
	}

	entryzPool.Put(e)
}
