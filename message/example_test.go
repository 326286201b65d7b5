package message_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/zostay/pantomime/message"
	"github.com/zostay/pantomime/message/header"
	"github.com/zostay/pantomime/message/source"
)

func ExampleNew() {
	msg := message.New()
	msg.SetHeader(header.Subject, "A message to nowhere")
	if err := msg.SetPlainBody("Hello World!", ""); err != nil {
		panic(err)
	}
	_, _ = msg.WriteTo(os.Stdout)
}

func ExampleMulti_SetAlternative() {
	msg := message.New()
	msg.SetHeader(header.Subject, "Some spam for you inbox")

	err := msg.SpecializeAsMulti().SetAlternative(
		message.Content{Text: "Hello World!"},
		message.Content{Text: "<p>Hello World!</p>"},
	)
	if err != nil {
		panic(err)
	}

	_, err = msg.AddAttachmentString("just in case", "note.txt", "text/plain")
	if err != nil {
		panic(err)
	}

	_, _ = msg.WriteTo(os.Stdout)
}

func ExampleMessage_PlainBody() {
	src := source.NewString("Subject: Hi\r\n" +
		"Content-Type: multipart/alternative; boundary=B\r\n" +
		"\r\n" +
		"--B\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Hello World!\r\n" +
		"--B\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>Hello World!</p>\r\n" +
		"--B--\r\n")

	msg, err := src.Load()
	if err != nil {
		panic(err)
	}

	plain, err := msg.PlainBody()
	if err != nil {
		panic(err)
	}

	body, err := plain.Single().BodyString()
	if err != nil {
		panic(err)
	}

	fmt.Println(plain.Path(), strings.TrimSpace(body))
	// Output: 0.0 Hello World!
}
