package cmd

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ardanlabs/powminer/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var message string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate a key pair, sign a message and encrypt it",
	RunE:  keysRun,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.Flags().StringVarP(&message, "message", "m", "", "Message to sign and encrypt, prompted for when empty.")
}

func keysRun(cmd *cobra.Command, args []string) error {
	msg := message
	if msg == "" {
		var err error
		msg, err = prompt(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), "Message: ")
		if err != nil {
			return err
		}
	}

	return keysDemo(cmd.OutOrStdout(), []byte(msg))
}

func keysDemo(w io.Writer, msg []byte) error {
	privateKey, err := signature.GenerateKey()
	if err != nil {
		return err
	}

	pub, err := signature.PublicKeyOpenSSH(&privateKey.PublicKey)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s\n", signature.PrivateKeyPEM(privateKey))
	fmt.Fprintf(w, "%s\n", pub)

	sig, err := signature.Sign(msg, privateKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "signature: %s\n", hex.EncodeToString(sig))
	fmt.Fprintf(w, "valid for the message: %t\n", signature.IsValid(msg, sig, &privateKey.PublicKey))

	otherKey, err := signature.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "valid for another key: %t\n", signature.IsValid(msg, sig, &otherKey.PublicKey))

	tampered := append([]byte{}, msg...)
	tampered = append(tampered, '!')
	fmt.Fprintf(w, "valid for a tampered message: %t\n", signature.IsValid(tampered, sig, &privateKey.PublicKey))

	ciphertext, err := signature.Encrypt(msg, &privateKey.PublicKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "ciphertext: %s\n", hex.EncodeToString(ciphertext))

	plaintext, err := signature.Decrypt(ciphertext, privateKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "decrypted: %s\n", plaintext)

	return nil
}
