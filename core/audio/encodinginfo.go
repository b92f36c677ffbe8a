package audio

const (
	// InputSampleRate is the capture rate for outbound microphone frames.
	InputSampleRate = 16000
	// OutputSampleRate is the playback rate of agent speech frames.
	OutputSampleRate = 24000

	DefaultFormat = "linear16"
)

// InputEncodingInfo describes the microphone capture stream.
func InputEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: InputSampleRate, Format: encodingFormat(DefaultFormat)}
}

// OutputEncodingInfo describes the agent speech playback stream.
func OutputEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: OutputSampleRate, Format: encodingFormat(DefaultFormat)}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// BytesPerSecond is the raw throughput of a mono stream with this encoding.
func (e EncodingInfo) BytesPerSecond() int {
	return e.SampleRate * e.Format.ByteSize()
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
