/*
Package plan applies augmentations described in a file.

A plan lists targets by owner and name, each with an ordered list of advice:

	targets:
	  - owner: greetings
	    name: greet
	    advice:
	      - kind: log
	        params: {level: info}
	      - kind: retry
	        params: {attempts: 3, delay: 10ms}

Plans are read from YAML (the default), JSON or TOML. A Catalog turns every
advice entry into hooks; DefaultCatalog knows the kinds provided by package
advice. Apply weaves the whole plan onto a set of owners and returns an
Applied handle whose Undo unwinds it.
*/
package plan
