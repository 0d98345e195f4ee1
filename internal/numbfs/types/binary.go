package types

import (
	"bytes"
	"encoding/binary"
	"io"
)

// BinaryReader helps with reading binary data
type BinaryReader struct {
	reader *bytes.Reader
	order  binary.ByteOrder
}

// NewBinaryReader creates a new binary reader over data with the
// specified byte order
func NewBinaryReader(data []byte, order binary.ByteOrder) *BinaryReader {
	return &BinaryReader{
		reader: bytes.NewReader(data),
		order:  order,
	}
}

// Read reads structured binary data into data.
// Data must be a pointer to a fixed-size value or a slice of fixed-size values.
func (br *BinaryReader) Read(data interface{}) error {
	return binary.Read(br.reader, br.order, data)
}

// ReadUint8 reads a uint8
func (br *BinaryReader) ReadUint8() (uint8, error) {
	var val uint8
	err := br.Read(&val)
	return val, err
}

// ReadUint16 reads a uint16
func (br *BinaryReader) ReadUint16() (uint16, error) {
	var val uint16
	err := br.Read(&val)
	return val, err
}

// ReadUint32 reads a uint32
func (br *BinaryReader) ReadUint32() (uint32, error) {
	var val uint32
	err := br.Read(&val)
	return val, err
}

// ReadInt32 reads an int32
func (br *BinaryReader) ReadInt32() (int32, error) {
	var val int32
	err := br.Read(&val)
	return val, err
}

// ReadBytes reads a slice of bytes with the specified length
func (br *BinaryReader) ReadBytes(length int) ([]byte, error) {
	buf := make([]byte, length)
	_, err := io.ReadFull(br.reader, buf)
	return buf, err
}

// Skip advances the reader past n bytes of padding or reserved space
func (br *BinaryReader) Skip(n int) error {
	_, err := br.reader.Seek(int64(n), io.SeekCurrent)
	return err
}

// BinaryWriter helps with writing binary data
type BinaryWriter struct {
	writer io.Writer
	order  binary.ByteOrder
}

// NewBinaryWriter creates a new binary writer with specified byte order
func NewBinaryWriter(w io.Writer, order binary.ByteOrder) *BinaryWriter {
	return &BinaryWriter{
		writer: w,
		order:  order,
	}
}

// Write writes the binary representation of data into w.
func (bw *BinaryWriter) Write(data interface{}) error {
	return binary.Write(bw.writer, bw.order, data)
}

// WriteUint8 writes a uint8
func (bw *BinaryWriter) WriteUint8(val uint8) error {
	return bw.Write(val)
}

// WriteUint16 writes a uint16
func (bw *BinaryWriter) WriteUint16(val uint16) error {
	return bw.Write(val)
}

// WriteUint32 writes a uint32
func (bw *BinaryWriter) WriteUint32(val uint32) error {
	return bw.Write(val)
}

// WriteInt32 writes an int32
func (bw *BinaryWriter) WriteInt32(val int32) error {
	return bw.Write(val)
}

// WriteBytes writes a slice of bytes
func (bw *BinaryWriter) WriteBytes(data []byte) error {
	_, err := bw.writer.Write(data)
	return err
}

// WriteStringWithLen writes a string of exactly the specified length.
// If the string is shorter, it will be null-padded.
func (bw *BinaryWriter) WriteStringWithLen(s string, length int) error {
	if len(s) >= length {
		return bw.WriteBytes([]byte(s[:length]))
	}

	if err := bw.WriteBytes([]byte(s)); err != nil {
		return err
	}

	padding := make([]byte, length-len(s))
	return bw.WriteBytes(padding)
}
