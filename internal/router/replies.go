package router

const (
	replyAuthorize    = "You must first authorize me! Open the following link and send me the activation code:\n"
	replyAuthorized   = "Successfully authorized! You can start using me now! Type /help for instructions."
	replyParseFailure = "Unable to parse text, please try again."
	replyCreated      = "Event successfully created!\n\n"
	replyUnexpected   = "Unexpected error occurred, please try again later."
	replyUpcoming     = "Upcoming events:"
	replyNoEvents     = "No upcoming events found."
)

const helpText = `You can add an event to your calendar by sending me a message following these rules (only spanish for now):

<event name>, <when>, <reminder>

<when> can be written in several ways. Examples:

    * mañana 18 (mañana a las 18hs)
    * hoy 16 (hoy a las 16hs)
    * mie 8-10 (próximo miércoles de 8 a 10hs)
    * lun 9:30 (próximo lunes 9:30am)
    * abr 10 (10 de abril a las 0hs)
    * sep 2 9:30-10:45 (2 de septiembre de 9:30 a 10:45am)

<reminder> is optional. Examples:

    * 10m (10 minutos antes)
    * 1h (1 hora antes)
    * 1d (1 día antes)

Full example:

    * entrevista, mañana 9, 12h

Commands:

    /list  upcoming events
    /start authorize me again
    /help  this message`
