package sequencerpb

import (
	"github.com/ethereum/go-ethereum/rlp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const CodecName = "rlp"

// Codec encodes service messages with RLP.
type Codec struct{}

func init() {
	encoding.RegisterCodec(Codec{})
}

func (Codec) Marshal(v any) ([]byte, error) {
	return rlp.EncodeToBytes(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return rlp.DecodeBytes(data, v)
}

func (Codec) Name() string {
	return CodecName
}

func DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	}
}

func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ForceServerCodec(Codec{}),
	}
}
