package device

import (
	"github.com/robotalks/minefield/pkg/comm"
	"github.com/robotalks/minefield/pkg/game"
)

// StatusOf maps a click outcome to the response status.
func StatusOf(o game.Outcome) comm.Status {
	switch o {
	case game.OutcomeLose:
		return comm.StatusLose
	case game.OutcomeWin:
		return comm.StatusWin
	}
	return comm.StatusOK
}

// MinefieldReply carries the solved field, one byte per cell in row-major
// order, mines as 9.
func MinefieldReply(f *game.Field) []*comm.Response {
	return comm.ChunkResponse(comm.CmdMinefield, comm.StatusOK, f.Wire())
}

// ClickReply carries a (row, col, value) triple for every revealed cell.
func ClickReply(o game.Outcome, cells []game.RevealedCell) []*comm.Response {
	payload := make([]byte, 0, len(cells)*3)
	for _, c := range cells {
		payload = append(payload, c.Row, c.Col, c.Value)
	}
	return comm.ChunkResponse(comm.CmdClick, StatusOf(o), payload)
}

// AbortReply acknowledges an abort.
func AbortReply() []*comm.Response {
	return comm.ChunkResponse(comm.CmdAbort, comm.StatusOK, nil)
}

// ErrorReply rejects a request.
func ErrorReply(cmd comm.Command) []*comm.Response {
	return comm.ChunkResponse(cmd, comm.StatusError, nil)
}

// encodeFrames concatenates frames so a reply is written contiguously.
func encodeFrames(frames []*comm.Response) ([]byte, error) {
	var out []byte
	for _, f := range frames {
		b, err := f.Bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
