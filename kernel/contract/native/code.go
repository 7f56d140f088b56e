package native

// 原生合约的字节码是一个最小wasm模块, 导出call函数,
// 自定义段携带合约名, 从而使每个合约的代码哈希唯一

// CustomSectionName name of the custom section holding the contract name
const CustomSectionName = "xengine.native"

var wasmHeader = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// type section: one func type () -> ()
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	// function section: one func of type 0
	0x03, 0x02, 0x01, 0x00,
	// export section: "call" func 0
	0x07, 0x08, 0x01, 0x04, 'c', 'a', 'l', 'l', 0x00, 0x00,
	// code section: empty body
	0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b,
}

// Code wasm bytecode selecting the native contract name
func Code(name string) []byte {
	var payload []byte
	payload = appendUleb(payload, uint32(len(CustomSectionName)))
	payload = append(payload, CustomSectionName...)
	payload = append(payload, name...)

	code := make([]byte, 0, len(wasmHeader)+len(payload)+6)
	code = append(code, wasmHeader...)
	code = append(code, 0x00)
	code = appendUleb(code, uint32(len(payload)))
	return append(code, payload...)
}

func appendUleb(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		return append(buf, b)
	}
}
