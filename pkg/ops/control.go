package ops

import (
	"github.com/zurustar/infrared/pkg/control"
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/midi"
)

// modeLocalOn is the CONTROL_MODE_LOCAL_ON sentinel: it is never sent
// as a literal CC number (the real Local Control CC is 122, shared with
// local_off); it only distinguishes "send CC 122 value 127" from
// "send CC 122 value 0" in the dispatch below.
const modeLocalOn = -1

// RegisterControl installs the direct MIDI-emitting control operations:
// null_event, the text family, time_sig, major_key/minor_key, custom,
// sysex, program, patch, the channel-mode family, and the auto-tracked
// controller family (auto_tempo, auto_7bit, auto_14bit, auto_nonreg,
// auto_reg, auto_pressure, auto_pitch).
func RegisterControl(r *Registry) error {
	adds := map[string]Func{
		"null_event": opNullEvent,

		"text":            textOp(midi.TextGeneral),
		"text_copyright":  textOp(midi.TextCopyright),
		"text_title":      textOp(midi.TextTitle),
		"text_instrument": textOp(midi.TextInstrument),
		"text_lyric":      textOp(midi.TextLyric),
		"text_marker":     textOp(midi.TextMarker),
		"text_cue":        textOp(midi.TextCue),

		"time_sig": opTimeSig,

		"major_key": keyOp(false),
		"minor_key": keyOp(true),

		"custom":  opCustom,
		"sysex":   opSysex,
		"program": opProgram,
		"patch":   opPatch,

		"sound_off":  modalOp(120),
		"midi_reset": modalOp(121),
		"local_off":  modalOp(122),
		"local_on":   modalOp(modeLocalOn),
		"notes_off":  modalOp(123),
		"omni_off":   modalOp(124),
		"omni_on":    modalOp(125),
		"mono":       opMono,
		"poly":       modalOp(127),

		"auto_tempo":    opAutoTempo,
		"auto_7bit":     autoIdxOp(control.TargetCC7),
		"auto_14bit":    autoIdxOp(control.TargetCC14),
		"auto_nonreg":   autoIdxOp(control.TargetNRPN),
		"auto_reg":      autoIdxOp(control.TargetRPN),
		"auto_pressure": autoChOp(control.TargetPressure),
		"auto_pitch":    autoChOp(control.TargetPitchBend),
	}
	return addAll(r, adds)
}

func popPointerMoment(ctx *Context) (t int64, head bool, err error) {
	pv, err := ctx.Machine.Pop()
	if err != nil {
		return 0, false, err
	}
	return resolveMoment(ctx, pv.AsPointer())
}

func opNullEvent(ctx *Context) error {
	t, head, err := popPointerMoment(ctx)
	if err != nil {
		return err
	}
	return ctx.Assembler.AddNull(t, head)
}

func textOp(class int) Func {
	return func(ctx *Context) error {
		tv, err := ctx.Machine.Pop()
		if err != nil {
			return err
		}
		t, head, err := popPointerMoment(ctx)
		if err != nil {
			return err
		}
		return ctx.Assembler.AddText(t, head, class, tv.AsText())
	}
}

func opTimeSig(ctx *Context) error {
	metro, err := popInt(ctx)
	if err != nil {
		return err
	}
	denom, err := popInt(ctx)
	if err != nil {
		return err
	}
	num, err := popInt(ctx)
	if err != nil {
		return err
	}
	t, head, err := popPointerMoment(ctx)
	if err != nil {
		return err
	}
	return ctx.Assembler.AddTimeSig(t, head, int(num), int(denom), int(metro))
}

func keyOp(minor bool) Func {
	return func(ctx *Context) error {
		count, err := popInt(ctx)
		if err != nil {
			return err
		}
		t, head, err := popPointerMoment(ctx)
		if err != nil {
			return err
		}
		return ctx.Assembler.AddKeySig(t, head, int(count), minor)
	}
}

func opCustom(ctx *Context) error {
	bv, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	t, head, err := popPointerMoment(ctx)
	if err != nil {
		return err
	}
	return ctx.Assembler.AddCustom(t, head, bv.AsBlob())
}

func opSysex(ctx *Context) error {
	bv, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	t, head, err := popPointerMoment(ctx)
	if err != nil {
		return err
	}
	return ctx.Assembler.AddSystem(t, head, bv.AsBlob())
}

func opProgram(ctx *Context) error {
	return emitInstrument(ctx, false)
}

func opPatch(ctx *Context) error {
	return emitInstrument(ctx, true)
}

// emitInstrument implements control_instrument: program (and, for
// patch, bank) are 1-indexed in the script but 0-indexed on the wire.
// A bank selection is a Control 0 (MSB)/32 (LSB) pair immediately
// preceding the Program Change.
func emitInstrument(ctx *Context, hasBank bool) error {
	program, err := popInt(ctx)
	if err != nil {
		return err
	}
	var bank int64
	if hasBank {
		bank, err = popInt(ctx)
		if err != nil {
			return err
		}
	}
	ch, err := popInt(ctx)
	if err != nil {
		return err
	}
	t, head, err := popPointerMoment(ctx)
	if err != nil {
		return err
	}
	if program < 1 || program > 128 {
		return diag.Newf(diag.Range, "program %d out of range [1,128]", program)
	}
	if hasBank {
		if bank < 1 || bank > 16384 {
			return diag.Newf(diag.Range, "bank %d out of range [1,16384]", bank)
		}
		b := bank - 1
		msb := int((b >> 7) & 0x7f)
		lsb := int(b & 0x7f)
		if err := ctx.Assembler.AddMessage(t, head, int(ch), midi.Control, 0, msb); err != nil {
			return err
		}
		if err := ctx.Assembler.AddMessage(t, head, int(ch), midi.Control, 0x20, lsb); err != nil {
			return err
		}
	}
	return ctx.Assembler.AddMessage(t, head, int(ch), midi.Program, 0, int(program-1))
}

// modalOp adapts the channel-mode family (every one-argument mode
// except mono) into one shape: pop the channel, emit CC `mode` with a
// value of 127 for local_on (the CONTROL_MODE_LOCAL_ON case) or 0
// otherwise.
func modalOp(mode int) Func {
	return func(ctx *Context) error {
		ch, err := popInt(ctx)
		if err != nil {
			return err
		}
		t, head, err := popPointerMoment(ctx)
		if err != nil {
			return err
		}
		if mode == modeLocalOn {
			return ctx.Assembler.AddMessage(t, head, int(ch), midi.Control, 122, 127)
		}
		return ctx.Assembler.AddMessage(t, head, int(ch), midi.Control, mode, 0)
	}
}

func opMono(ctx *Context) error {
	count, err := popInt(ctx)
	if err != nil {
		return err
	}
	ch, err := popInt(ctx)
	if err != nil {
		return err
	}
	t, head, err := popPointerMoment(ctx)
	if err != nil {
		return err
	}
	if count < 0 || count > midi.MaxChannel {
		return diag.Newf(diag.Range, "mono channel count %d out of range [0,%d]", count, midi.MaxChannel)
	}
	return ctx.Assembler.AddMessage(t, head, int(ch), midi.Control, 126, int(count))
}

func opAutoTempo(ctx *Context) error {
	gv, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	return ctx.Controllers.Register(control.TargetTempo, 0, 0, gv.AsGraph())
}

func autoIdxOp(target control.Target) Func {
	return func(ctx *Context) error {
		gv, err := ctx.Machine.Pop()
		if err != nil {
			return err
		}
		idx, err := popInt(ctx)
		if err != nil {
			return err
		}
		ch, err := popInt(ctx)
		if err != nil {
			return err
		}
		return ctx.Controllers.Register(target, ch, idx, gv.AsGraph())
	}
}

func autoChOp(target control.Target) Func {
	return func(ctx *Context) error {
		gv, err := ctx.Machine.Pop()
		if err != nil {
			return err
		}
		ch, err := popInt(ctx)
		if err != nil {
			return err
		}
		return ctx.Controllers.Register(target, ch, 0, gv.AsGraph())
	}
}
