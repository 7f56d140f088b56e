package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuperchain/xengine/kernel/contract"
	"github.com/xuperchain/xengine/kernel/ledger"
)

// parseArgs 解析 type:value 形式的合约参数
//
//	i32:-7  u64:5  u256:1000  str:name  key:account-<addr>  uref:<key>:<rights>
func parseArgs(raw []string) (contract.Args, error) {
	args := make(contract.Args, 0, len(raw))
	for _, s := range raw {
		v, err := parseArg(s)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func parseArg(s string) (ledger.Value, error) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return nil, fmt.Errorf("argument %q has no type", s)
	}
	typ, body := s[:idx], s[idx+1:]
	switch typ {
	case "i32":
		n, err := strconv.ParseInt(body, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad i32 argument %q", body)
		}
		return ledger.Int32(n), nil
	case "u64":
		n, err := strconv.ParseUint(body, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad u64 argument %q", body)
		}
		return ledger.UInt64(n), nil
	case "u256":
		return ledger.ParseUInt256(body)
	case "str":
		return ledger.String(body), nil
	case "key":
		key, err := ledger.ParseKey(body)
		if err != nil {
			return nil, err
		}
		return ledger.KeyValue{Key: key}, nil
	case "uref":
		pos := strings.LastIndexByte(body, ':')
		if pos < 0 {
			return nil, fmt.Errorf("uref argument %q has no rights", body)
		}
		key, err := ledger.ParseKey(body[:pos])
		if err != nil {
			return nil, err
		}
		if key.Tag != ledger.KeyURef {
			return nil, fmt.Errorf("%s is not a uref", key)
		}
		rights, err := strconv.ParseUint(body[pos+1:], 10, 8)
		if err != nil || !ledger.AccessRights(rights).Valid() {
			return nil, fmt.Errorf("bad access rights %q", body[pos+1:])
		}
		return ledger.URefValue{Handle: ledger.NewURef(key.Addr, ledger.AccessRights(rights))}, nil
	}
	return nil, fmt.Errorf("unknown argument type %q", typ)
}
