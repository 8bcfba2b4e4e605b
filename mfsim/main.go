package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/barnettlynn/mfcrypto1/internal/transcript"
	"github.com/barnettlynn/mfcrypto1/pkg/pcsc"
)

func main() {
	keyHex := flag.String("key", "ffffffffffff", "48-bit sector key (hex)")
	uidHex := flag.String("uid", "", "card UID (hex, 4 bytes); read from -reader when empty")
	readerIndex := flag.Int("reader", 0, "PC/SC reader index used when -uid is empty")
	ntHex := flag.String("nt", "", "tag nonce (hex); random when empty")
	nrHex := flag.String("nr", "", "reader nonce (hex); random when empty")
	outPath := flag.String("o", "", "write the transcript to this YAML file")
	withNr := flag.Bool("with-nr", false, "keep the reader nonce in the transcript file")
	verbose := flag.Bool("v", false, "enable debug logging")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	listReaders := flag.Bool("list-readers", false, "print the PC/SC readers and exit")
	flag.Parse()

	// Configure slog
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if *logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	if *listReaders {
		readers, err := pcsc.Readers()
		if err != nil {
			log.Fatal(err)
		}
		for i, r := range readers {
			fmt.Printf("[%d] %s\n", i, r)
		}
		return
	}

	key, err := parseKey(*keyHex)
	if err != nil {
		log.Fatalf("invalid -key: %v", err)
	}

	var uid uint32
	if *uidHex != "" {
		if uid, err = parseHex32(*uidHex); err != nil {
			log.Fatalf("invalid -uid: %v", err)
		}
	} else {
		var reader string
		uid, reader, err = pcsc.ReadReaderUID(*readerIndex)
		if err != nil {
			log.Fatalf("read uid failed: %v", err)
		}
		fmt.Printf("Using reader [%d]: %s\n", *readerIndex, reader)
	}

	nt, err := hexOrRandom(*ntHex, randomNonce)
	if err != nil {
		log.Fatalf("invalid -nt: %v", err)
	}
	nr, err := hexOrRandom(*nrHex, randomWord)
	if err != nil {
		log.Fatalf("invalid -nr: %v", err)
	}

	res, err := simulate(key, uid, nt, nr)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
	printResult(res)

	if *outPath != "" {
		if err := transcript.Save(*outPath, res.Transcript, *withNr); err != nil {
			log.Fatalf("save transcript failed: %v", err)
		}
		fmt.Printf("Transcript written to %s\n", *outPath)
	}
}

func printResult(res *result) {
	t := res.Transcript
	fmt.Printf("Session:  %s\n", res.SessionID)
	fmt.Printf("UID:      %08X\n", t.UID)
	fmt.Printf("Tag   -> nt            %08X\n", t.Nt)
	fmt.Printf("Reader -> {nr}{ar}     %X\n", res.Reader)
	fmt.Printf("Tag   -> {at}          %X\n", res.Card)
	fmt.Printf("nr (plain):            %08X\n", t.Nr)
	fmt.Println("Tag model accepted the reader and produced the same {at}")
}
