package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// 编解码器名称
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
	CodecProto   = "proto"
)

// ErrUnknownCodec 不支持的编解码器
var ErrUnknownCodec = errors.New("unknown codec")

// Codec 连接级别的消息编解码器
type Codec interface {
	Name() string
	// Binary 是否以二进制帧发送
	Binary() bool
	Encode(msgType string, payload any) ([]byte, error)
	Decode(data []byte) (Message, error)
}

// CodecByName 按名称获取编解码器，空名称默认JSON
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecMsgpack:
		return MsgpackCodec{}, nil
	case CodecProto:
		return ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
}

// JSONCodec 文本帧JSON
type JSONCodec struct{}

func (JSONCodec) Name() string { return CodecJSON }
func (JSONCodec) Binary() bool { return false }

// Encode 编码消息
func (JSONCodec) Encode(msgType string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{Type: msgType, Payload: payload})
}

// Decode 解码消息
func (JSONCodec) Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("解析JSON消息失败: %w", err)
	}
	return msg, nil
}

// MsgpackCodec 二进制帧msgpack
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return CodecMsgpack }
func (MsgpackCodec) Binary() bool { return true }

// Encode 编码消息
func (MsgpackCodec) Encode(msgType string, payload any) ([]byte, error) {
	return msgpack.Marshal(&Envelope{Type: msgType, Payload: payload})
}

// Decode 解码消息，payload 转为JSON
func (MsgpackCodec) Decode(data []byte) (Message, error) {
	var raw struct {
		Type    string             `msgpack:"type"`
		Payload msgpack.RawMessage `msgpack:"payload"`
	}
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return Message{}, fmt.Errorf("解析msgpack消息失败: %w", err)
	}

	msg := Message{Type: raw.Type}
	if len(raw.Payload) == 0 {
		return msg, nil
	}

	var payload any
	if err := msgpack.Unmarshal(raw.Payload, &payload); err != nil {
		return Message{}, fmt.Errorf("解析msgpack负载失败: %w", err)
	}
	if payload == nil {
		return msg, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("转换msgpack负载失败: %w", err)
	}
	msg.Payload = body
	return msg, nil
}

// ProtoCodec 二进制帧protobuf，消息体为 google.protobuf.Struct
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return CodecProto }
func (ProtoCodec) Binary() bool { return true }

// Encode 编码消息
func (ProtoCodec) Encode(msgType string, payload any) ([]byte, error) {
	fields := map[string]any{"type": msgType}
	if payload != nil {
		generic, err := toGeneric(payload)
		if err != nil {
			return nil, err
		}
		fields["payload"] = generic
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("构造protobuf消息失败: %w", err)
	}
	return proto.Marshal(st)
}

// Decode 解码消息
func (ProtoCodec) Decode(data []byte) (Message, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return Message{}, fmt.Errorf("解析protobuf消息失败: %w", err)
	}

	msg := Message{Type: st.GetFields()["type"].GetStringValue()}
	if v, ok := st.GetFields()["payload"]; ok {
		body, err := json.Marshal(v.AsInterface())
		if err != nil {
			return Message{}, fmt.Errorf("转换protobuf负载失败: %w", err)
		}
		msg.Payload = body
	}
	return msg, nil
}

// toGeneric 通过JSON把结构体转换成 structpb 可接受的通用值
func toGeneric(v any) (any, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("序列化负载失败: %w", err)
	}
	var generic any
	if err := json.Unmarshal(body, &generic); err != nil {
		return nil, fmt.Errorf("转换负载失败: %w", err)
	}
	return generic, nil
}
