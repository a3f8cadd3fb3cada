package filters

import (
	"fmt"

	"github.com/jgpdf/pdfcore/model"
)

func init() {
	Register(model.FilterRunLength, runLengthCodec{})
}

type runLengthCodec struct{}

const runLengthEOD = 0x80

func (runLengthCodec) Decode(data []byte, _ model.DecodeParms) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(data) {
		b := data[i]
		i++
		if b == runLengthEOD {
			return out, nil
		}
		if b < 0x80 {
			n := int(b) + 1
			if i+n > len(data) {
				return nil, fmt.Errorf("RunLengthDecode: literal run truncated")
			}
			out = append(out, data[i:i+n]...)
			i += n
			continue
		}
		if i >= len(data) {
			return nil, fmt.Errorf("RunLengthDecode: repeat run truncated")
		}
		n := 257 - int(b)
		c := data[i]
		i++
		for j := 0; j < n; j++ {
			out = append(out, c)
		}
	}
	return nil, fmt.Errorf("RunLengthDecode: missing EOD marker")
}

func (runLengthCodec) Encode(data []byte, _ model.DecodeParms) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(data) {
		// Find a run of identical bytes.
		j := i + 1
		for j < len(data) && j-i < 128 && data[j] == data[i] {
			j++
		}
		if j-i >= 2 {
			out = append(out, byte(257-(j-i)), data[i])
			i = j
			continue
		}
		// Literal run: extend while bytes differ (no 2+ repeat ahead).
		k := i + 1
		for k < len(data) && k-i < 128 {
			if k+1 < len(data) && data[k] == data[k+1] {
				break
			}
			k++
		}
		out = append(out, byte(k-i-1))
		out = append(out, data[i:k]...)
		i = k
	}
	out = append(out, runLengthEOD)
	return out, nil
}
