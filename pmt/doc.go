// Package pmt decodes the binary tag encoding used for capture file headers.
//
// A capture header is a small, self-describing value tree. Each record on the
// wire starts with one type byte followed by a big-endian payload:
//
//	Type | Tag     | Payload
//	-----|---------|------------------------------------------------
//	0x00 | Bool    | none (true)
//	0x01 | Bool    | none (false)
//	0x02 | Symbol  | u16 length + UTF-8 bytes
//	0x03 | Int32   | 4 bytes
//	0x04 | Double  | 8 bytes IEEE754
//	0x06 | Null    | none
//	0x07 | Pair    | two nested records
//	0x09 | Dict    | pair(symbol, value) then 0x06 (end) or 0x09 (more)
//	0x0b | UInt64  | 8 bytes
//	0x0c | Tuple   | u32 count + count nested records
//
// A dictionary is therefore a right-nested chain:
//
//	09 07 <symbol a> <value a> 09 07 <symbol b> <value b> 06
//
// # Decoding
//
//	dec := pmt.NewDecoder(r)
//	tag, err := dec.Decode()
//
// DecodeOptional behaves like Decode except that a clean end of stream at the
// very first byte of a record reports "no record" instead of an error. Running
// out of bytes anywhere after that first byte is always ErrUnexpectedEOF.
//
// # Encoding
//
// Append and Marshal produce the same wire format. They exist for tests and
// fixture generation; grmeta does not write capture files.
package pmt
