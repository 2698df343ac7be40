package grpc

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	assert.NotZero(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodecPlainStruct(t *testing.T) {
	c := jsonCodec{}
	data, err := c.Marshal(&sample{Name: "a", Items: []string{"x", "y"}})
	assert.NoError(t, err)
	assert.Equal(t, `{"name":"a","items":["x","y"]}`, string(data))

	var out sample
	assert.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, sample{Name: "a", Items: []string{"x", "y"}}, out)
}

func TestCodecProtoMessage(t *testing.T) {
	c := jsonCodec{}
	data, err := c.Marshal(wrapperspb.String("hello"))
	assert.NoError(t, err)

	out := &wrapperspb.StringValue{}
	assert.NoError(t, c.Unmarshal(data, out))
	assert.Equal(t, "hello", out.GetValue())
}
