package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanglekit/blockcodec/pkg/block"
	"github.com/tanglekit/blockcodec/pkg/storage"
	"github.com/tanglekit/blockcodec/pkg/wire"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	out := &bytes.Buffer{}
	app.Reader = strings.NewReader(stdin)
	app.Writer = out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"blockcodec", "--log-level", "error"}, args...))
	return out.String(), err
}

func testRecord(t *testing.T, index uint16) (block.OutputData, string) {
	t.Helper()
	var txID block.TransactionID
	txID[0] = 0x10
	outputID := block.NewOutputID(txID, index)
	var pubKeyHash [block.HashLength]byte
	pubKeyHash[31] = 0x42
	addr := block.NewEd25519Address(pubKeyHash)
	uc, err := block.NewAddressUnlockCondition(addr)
	assert.NoError(t, err)
	output, err := block.NewBasicOutput(500, 0, []block.UnlockCondition{uc}, nil)
	assert.NoError(t, err)
	data := block.OutputData{
		OutputID: outputID,
		Metadata: block.OutputMetadata{OutputID: outputID},
		Output:   output,
		Address:  addr,
	}
	encoded, err := wire.Marshal(block.EncodeOutputData(data))
	assert.NoError(t, err)
	return data, string(encoded)
}

func TestDecodeCommand(t *testing.T) {
	signature := `{"type":0,"publicKey":{"type":0,"publicKey":"0x` + strings.Repeat("ab", 32) + `"},"signature":"0x` + strings.Repeat("cd", 64) + `"}`
	withExtra := `{"type":0,"extra":1,"address":{"type":0,"pubKeyHash":"0x` + strings.Repeat("00", 32) + `"}}`

	cases := []struct {
		name     string
		stdin    string
		args     []string
		expected string
		errStr   string
	}{
		{
			name:     "signature is canonical",
			stdin:    signature,
			args:     []string{"decode", "--family", "Signature"},
			expected: signature + "\n",
		},
		{
			name:     "unknown fields are ignored by default",
			stdin:    withExtra,
			args:     []string{"decode", "--family", "UnlockCondition", "-"},
			expected: `{"type":0,"address":{"type":0,"pubKeyHash":"0x` + strings.Repeat("00", 32) + `"}}` + "\n",
		},
		{
			name:   "strict rejects unknown fields",
			stdin:  withExtra,
			args:   []string{"decode", "--family", "UnlockCondition", "--strict"},
			errStr: "extra",
		},
		{
			name:   "unknown family",
			stdin:  signature,
			args:   []string{"decode", "--family", "Nope"},
			errStr: `unknown family "Nope"`,
		},
		{
			name:   "invalid json",
			stdin:  "{",
			args:   []string{"decode", "--family", "Signature"},
			errStr: "",
		},
	}

	for _, testCase := range cases {
		t.Logf("Testing %s", testCase.name)
		out, err := runApp(t, testCase.stdin, testCase.args...)
		if testCase.expected == "" {
			assert.Error(t, err)
			if testCase.errStr != "" {
				assert.ErrorContains(t, err, testCase.errStr)
			}
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, testCase.expected, out)
	}
}

func TestDecodeCommandFromFile(t *testing.T) {
	_, encoded := testRecord(t, 0)
	path := filepath.Join(t.TempDir(), "record.json")
	assert.NoError(t, os.WriteFile(path, []byte(encoded), 0o600))

	out, err := runApp(t, "", "decode", "--family", outputDataFamily, path)
	assert.NoError(t, err)
	assert.Equal(t, encoded+"\n", out)
}

func TestAddressCommand(t *testing.T) {
	out, err := runApp(t, "", "address", "--mnemonic", testMnemonic, "--index", "1")
	assert.NoError(t, err)
	assert.Contains(t, out, "chain: m/44'/4218'/0'/0'/1'")
	assert.Contains(t, out, "publicKey: 0xfd34e81286c664418e86d79e0b7510934deb21526eb730161a50c82fa0c4a31c")
	assert.Contains(t, out, "address: rms1qrlvtt8wry7lmv7j8q8r98z0m78l2cm8vm22ax9dmj6dsug7lzz5yet9la2")

	out, err = runApp(t, "", "address", "--mnemonic", testMnemonic, "--index", "1", "--json")
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"chain": "m/44'/4218'/0'/0'/1'",
		"publicKey": "0xfd34e81286c664418e86d79e0b7510934deb21526eb730161a50c82fa0c4a31c",
		"pubKeyHash": "0xfec5acee193dfdb3d2380e329c4fdf8ff5636766d4ae98addcb4d8711ef88542",
		"address": "rms1qrlvtt8wry7lmv7j8q8r98z0m78l2cm8vm22ax9dmj6dsug7lzz5yet9la2"
	}`, out)

	out, err = runApp(t, "", "--hrp", "smr", "address", "--generate")
	assert.NoError(t, err)
	assert.Contains(t, out, "mnemonic: ")
	assert.Contains(t, out, "address: smr1")

	_, err = runApp(t, "", "address")
	assert.ErrorContains(t, err, "mnemonic is required")

	_, err = runApp(t, "", "address", "--mnemonic", "not a phrase")
	assert.Error(t, err)
}

func TestStoreCommand(t *testing.T) {
	dataPath := t.TempDir()
	first, firstEncoded := testRecord(t, 0)
	second, secondEncoded := testRecord(t, 1)

	out, err := runApp(t, secondEncoded, "--data-path", dataPath, "store", "put")
	assert.NoError(t, err)
	assert.Equal(t, second.OutputID.String()+"\n", out)
	_, err = runApp(t, firstEncoded, "--data-path", dataPath, "store", "put", "-")
	assert.NoError(t, err)

	out, err = runApp(t, "", "--data-path", dataPath, "store", "get", first.OutputID.String())
	assert.NoError(t, err)
	assert.Equal(t, firstEncoded+"\n", out)

	out, err = runApp(t, "", "--data-path", dataPath, "store", "list", "--unspent")
	assert.NoError(t, err)
	assert.Equal(t, firstEncoded+"\n"+secondEncoded+"\n", out)

	out, err = runApp(t, "", "--data-path", dataPath, "store", "list", "--ids")
	assert.NoError(t, err)
	assert.Equal(t, first.OutputID.String()+"\n"+second.OutputID.String()+"\n", out)

	_, err = runApp(t, "", "--data-path", dataPath, "store", "list", "--ids", "--unspent")
	assert.Error(t, err)

	_, err = runApp(t, "", "--data-path", dataPath, "store", "delete", first.OutputID.String())
	assert.NoError(t, err)
	_, err = runApp(t, "", "--data-path", dataPath, "store", "delete", first.OutputID.String())
	assert.ErrorContains(t, err, "output was not found")

	_, err = runApp(t, "", "--data-path", dataPath, "store", "get", first.OutputID.String())
	assert.ErrorContains(t, err, "output was not found")

	_, err = runApp(t, "", "--data-path", dataPath, "store", "get")
	assert.ErrorContains(t, err, "expected exactly one output id")

	_, err = runApp(t, "{}", "--data-path", dataPath, "store", "put")
	assert.Error(t, err)
}

func TestLoadEnvironmentConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "system:\n  dataPath: " + dir + "\n  logLevel: debug\nnetwork:\n  hrp: smr\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	out, err := runApp(t, "", "--config", path, "address", "--mnemonic", testMnemonic)
	assert.NoError(t, err)
	assert.Contains(t, out, "address: smr1")

	_, err = runApp(t, "", "--config", filepath.Join(dir, "missing.json"), "address", "--mnemonic", testMnemonic)
	assert.Error(t, err)
}

func TestStorePutReadsPipedRecord(t *testing.T) {
	dataPath := t.TempDir()
	record, encoded := testRecord(t, 4)

	out, err := runApp(t, encoded, "--data-path", dataPath, "store", "put")
	assert.NoError(t, err)
	assert.Equal(t, record.OutputID.String()+"\n", out)

	out, err = runApp(t, "", "--data-path", dataPath, "store", "get", record.OutputID.String())
	assert.NoError(t, err)
	assert.Equal(t, encoded+"\n", out)
}

func TestStoreReturnsCloseError(t *testing.T) {
	errClose := errors.New("close failed")
	original := openStore
	t.Cleanup(func() { openStore = original })
	openStore = func(env *environment) (*storage.OutputStore, func() error, error) {
		store := storage.NewOutputStore(storage.NewMapStore(), env.decoder, env.logger)
		return store, func() error { return errClose }, nil
	}

	_, encoded := testRecord(t, 0)
	_, err := runApp(t, encoded, "store", "put")
	assert.ErrorIs(t, err, errClose)

	_, err = runApp(t, "", "store", "get")
	assert.ErrorContains(t, err, "expected exactly one output id")
}
