package recognizer

import (
	"fmt"
	"io"

	"scribe/internal/services"
	"scribe/internal/transcript"
)

// Collect reads src in ChunkSize chunks until exhaustion, feeding each chunk
// to the session and accumulating completions in emission order. The final
// flush is requested once after the stream ends and is always the last
// element of the returned sequence, even for a zero-length stream.
//
// The returned byte count covers only chunks that settled into a completion;
// chunks the engine held as partial audio are fed but not counted.
func Collect(src io.Reader, sess Session) (transcript.Sequence, int64, error) {
	var (
		seq      transcript.Sequence
		consumed int64
	)
	buf := make([]byte, ChunkSize)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			completed, payload, err := sess.AcceptWaveform(buf[:n])
			if err != nil {
				return nil, consumed, fmt.Errorf("accept waveform: %w", err)
			}
			if completed {
				res, err := transcript.ParseResult(payload)
				if err != nil {
					return nil, consumed, services.Wrap(services.ErrMalformedRecognizerOutput, "recognizer", "parse completion", "", err)
				}
				seq = append(seq, res)
				consumed += int64(n)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, consumed, fmt.Errorf("read audio stream: %w", readErr)
		}
	}

	payload, err := sess.FinalResult()
	if err != nil {
		return nil, consumed, fmt.Errorf("flush recognizer: %w", err)
	}
	res, err := transcript.ParseResult(payload)
	if err != nil {
		return nil, consumed, services.Wrap(services.ErrMalformedRecognizerOutput, "recognizer", "parse final flush", "", err)
	}
	seq = append(seq, res)

	return seq, consumed, nil
}
